// Package ui renders KeyBot in the terminal.
//
// # Components
//
//   - toast.go: ToastNotifier, the api.Notifier used by the CLI. Each failed
//     API call prints exactly one styled line ("✗ API Error: ...").
//   - upload.go: a Bubble Tea program with a bubbles/progress bar, fed by the
//     API client's progress callback through tea.Program.Send.
//   - dashboard.go: summary rendering shared by "keybot dashboard" and the
//     watch UI, plus the header and command bar.
//   - app.go, keys.go, logs.go: the "dashboard --watch" program. It shows the
//     latest state.Snapshot and, in the logs view, tails the JSON log file.
//
// # Views
//
//   - Dashboard: stat tiles, quote status counts, upcoming appointments and
//     recent calls, scrollable with j/k
//   - Logs: the CLI's own slog records, colorized by level, with "/" regex
//     search and follow mode
//
// # Themes
//
// Nightfox (default), Kanagawa and Slate. "T" cycles themes at runtime; the
// starting theme comes from config. Status badges are colored per theme.
//
// # Data Flow
//
//	poller ──Update──> state.Store <──Snapshot── tick (Model.Update)
//	log file <──logtail.Read── logs view
//
// The UI never calls the API itself; the poller in package app does.
package ui
