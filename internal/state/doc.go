// Package state provides thread-safe state management for KeyBot's dashboard
// watch mode.
//
// # Overview
//
// This package implements a small store for sharing the latest dashboard
// summary between the background poller and the UI. The poller writes after
// every refresh; the UI reads a snapshot on its own tick.
//
//	Producer (Poller):               Consumer (UI):
//	┌──────────────────┐            ┌──────────────────┐
//	│ Dashboard.Summary│            │                  │
//	│        ↓         │            │                  │
//	│  store.Update()  │───────────→│ store.Snapshot() │
//	│        ↓         │  (mutex)   │        ↓         │
//	│   repeat...      │            │    render UI     │
//	└──────────────────┘            └──────────────────┘
//
// # Update Semantics
//
//	// Success case: replace the summary
//	store.Update(&summary, nil)
//	→ snapshot.Summary = summary
//	→ snapshot.LastError = nil
//	→ snapshot.ConsecutiveFailures = 0
//
//	// Error case: keep old data, record error
//	store.Update(nil, err)
//	→ snapshot.Summary = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// A snapshot with two or more consecutive failures reports IsOffline, which
// the UI shows as a banner while it keeps rendering the last good summary.
//
// # Copying
//
// Both Update and Snapshot clone the summary's slices and status map, so the
// UI can never observe a summary the poller is still writing.
//
// The zero Store is ready to use.
package state
