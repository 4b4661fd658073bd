// Package transfer uploads a single video file at a time and tracks its
// byte-level progress.
//
// A Controller moves each upload through idle, in progress, and then exactly
// one of succeeded or failed. Progress callbacks from the HTTP client are
// clamped so BytesSent never decreases and never exceeds TotalBytes, and
// Percent is recomputed from them. After a successful upload the configured
// Refresher reloads the video list; the refresh is issued only once the
// server has responded.
//
// Observers register with Subscribe. The TUI turns each notification into a
// Bubble Tea message; the CLI prints a progress line.
package transfer
