// Package state holds the video list shared between the library view, the
// background refresher, and the front ends.
//
// # Overview
//
// Writers (library refreshes triggered by the user, by a finished upload or
// delete, or by the background poller) replace the list wholesale. Readers
// (the TUI tick, the CLI list command) take copies.
//
//	Writers:                        Readers:
//	┌───────────────────┐          ┌──────────────────┐
//	│ library.Refresh() │          │                  │
//	│       ↓           │          │                  │
//	│ store.Update()    │─────────→│ store.Snapshot() │
//	│ store.RecordError │ (mutex)  │       ↓          │
//	└───────────────────┘          │ render           │
//	                               └──────────────────┘
//
// # Consistency
//
// The list always reflects the last successful fetch to complete. Two
// refreshes racing each other resolve as last-write-wins; the store makes no
// attempt to order them by issue time. A failed fetch keeps the previous
// list and records the error, so a flaky API never blanks the screen.
//
// RecordError is for failures that are not list fetches (a rejected delete,
// for example). It surfaces the error without counting toward IsOffline.
//
// # Concurrency Model
//
// Store uses a sync.RWMutex. The lock is held only while copying; network
// I/O and rendering happen outside it. Snapshot returns cloned slices and a
// wrapped copy of the last error, so callers may mutate what they receive.
package state
