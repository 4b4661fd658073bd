// Package app is the composition root for vidlift.
//
// # Overview
//
// Build wires configuration, logging, the API client, and the three
// controllers into a Services value that both front ends use. Run adds the
// background refresher and hands everything to the TUI.
//
//	┌──────────────┐
//	│   Build()    │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()         Read ~/.config/vidlift/config.toml
//	       ├─────> prefs.Load()          Theme and start tab
//	       ├─────> logging.Open()        slog text handler on <log_dir>/vidlift.log
//	       ├─────> videoapi.NewClient()  HTTP client for list/upload/delete
//	       ├─────> library.New()         Video list over a shared state.Store
//	       ├─────> transfer.New()        Uploads; refreshes the library on success
//	       └─────> capture.NewController() ffmpeg recorder feeding transfer
//
//	Run():
//	       ├─────> StartPoller()         When refresh_seconds > 0
//	       └─────> ui.Run()              Blocks until quit or ctx cancel
//
// # Background Refresh
//
// The poller refreshes immediately, then waits refresh_seconds between
// fetches. While the API keeps failing the wait doubles per consecutive
// failure, capped at 30 seconds, and resets on the first success. With
// refresh_seconds = 0 the list is fetched once at startup and again after
// every upload or delete.
//
// # Notices
//
// Notifier is the transfer controller's Notifier. The TUI attaches a function
// that forwards each notice into the Bubble Tea program as a message; the
// CLI attaches one that prints to stderr.
//
// # Shutdown
//
// Services.Close abandons any recording still in progress, which stops the
// ffmpeg process and releases the devices, then closes the log file.
package app
