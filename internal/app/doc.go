// Package app is the composition root for the KeyBot CLI.
//
// # Overview
//
// New wires configuration, logging, credentials, the resilient API client
// and the domain services into one App that every command shares:
//
//	┌──────────────┐
//	│    New()     │
//	└──────┬───────┘
//	       ├─────> config.Load()       defaults, TOML file, KEYBOT_* env
//	       ├─────> logging.Init()      tint in dev, JSON file otherwise
//	       ├─────> prefs.Load()        saved theme, overrides config
//	       ├─────> credentials.Open()  bearer token, re-read per request
//	       ├─────> api.New()           hosts, toasts, rate limiter, timeout
//	       └─────> keybot.New()        customers, quotes, appointments, ...
//
// # Watch Mode
//
// Watch starts a background poller and the full-screen dashboard:
//
//	StartPoller() goroutine             ui.Run()
//	  ├─> Dashboard.Summary()             ├─> store.Snapshot() every tick
//	  ├─> store.Update()                  └─> render
//	  └─> wait interval, or backoff
//
// After a failed poll the next one waits interval*2^failures, capped at 30s.
// A success resets the delay. Toasts are muted while the full-screen UI
// owns the terminal; failures still show in the header and the log. A theme
// picked with T is saved through prefs.
//
// # Error Handling
//
// New fails on invalid configuration, an unwritable log file or unusable
// hosts. Request failures are never fatal here: the API client has already
// reported them once through the toast notifier.
package app
