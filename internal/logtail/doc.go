// Package logtail reads the tail of vidlift's log file and parses its lines
// for the TUI log view.
//
// # Reading Log Files
//
// Read keeps a ring buffer of maxLines entries while scanning the file once,
// so memory stays O(maxLines) no matter how large the log grows:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line in file:
//	   - Store line at current index
//	   - Increment index (wrapping at maxLines)
//	   - Track total lines seen
//	3. If total < maxLines:
//	   - Return first 'count' entries from buffer
//	4. If total >= maxLines:
//	   - Return buffer starting from current index (oldest line)
//
// A missing file returns nil, nil; the log may simply not exist yet.
//
// # Parsing
//
// Parse understands the key=value format written by slog's TextHandler:
//
//	time=2024-10-10T14:32:15.000Z level=INFO msg="upload finished" file=clip.mp4 bytes=1048576
//
// Quoted values are unquoted. Lines that are not slog records (a panic trace,
// ffmpeg output pasted in by hand) are returned with only Raw set so the view
// can still show them.
package logtail
