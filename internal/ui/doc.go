// Package ui is the vidlift terminal interface, built on Bubble Tea.
//
// # Layout
//
// Every frame is a header (logo, API state, video count, REC and upload
// badges), a command bar (tab strip plus key hints), the active tab, and a
// status line for the outcome of the last action.
//
// # Tabs
//
//   - Upload: a path input for picking a file, the camera recorder with a
//     live "Recording: N sec" counter, and the upload progress bar with
//     "Uploading... P% (X MB / Y MB)".
//   - Videos: one card per stored video with name, local upload date, size
//     and playback URL. Deleting asks for confirmation in a modal first.
//   - Logs: the tail of vidlift's own log file, colored by level.
//
// # Event Flow
//
//  1. Run creates the program, subscribes to upload progress and attaches to
//     the notice channel so both arrive as messages.
//  2. A tick polls the library, transfer and capture snapshots.
//  3. Keys start commands (upload, record, delete, refresh) that run off the
//     event loop and report back with a *DoneMsg.
//  4. Theme and start tab changes are written to the prefs file.
//
// # Key Bindings
//
//   - 1/2/3, tab: switch tabs
//   - o: choose a file (Upload), enter uploads it
//   - r: start or stop recording (Upload), refresh (Videos)
//   - j/k, g/G: move (Videos), scroll (Logs)
//   - d: delete the selected video
//   - f: toggle follow mode (Logs)
//   - T: cycle theme
//   - ?: help
//   - q: quit
package ui
