// Package config loads KeyBot CLI configuration.
//
// # Configuration Discovery
//
// Load resolves values in this order, later sources winning:
//
//  1. Built-in defaults (see Default)
//  2. The TOML file at the given path, or ~/.config/keybot/config.toml
//  3. KEYBOT_* environment variables
//
// A missing config file is not an error; empty values in the file keep the
// defaults. The merged result is validated before it is returned.
//
// # Default Values
//
//   - Origin: http://localhost:3000 (the fallback host)
//   - API base: /api, resolved against the origin (the primary host)
//   - Timeout: 30s per attempt
//   - Log level: info
//   - Environment: prod
//   - Token path: ~/.config/keybot/credentials.toml
//   - Log path: ~/.local/state/keybot/keybot.log (JSON records outside dev)
//   - Rate limit: disabled (0 requests/second), burst 5
//   - Theme: Nightfox (dashboard --watch)
//
// # TOML Format
//
// Example config.toml:
//
//	origin = "https://dashboard.keybot.example"
//	api_base = "https://api.keybot.example/api"
//	timeout = "30s"
//	log_level = "debug"
//	environment = "dev"
//	token_path = "~/.config/keybot/credentials.toml"
//	log_path = "~/.local/state/keybot/keybot.log"
//	rate_limit = 5.0
//	rate_burst = 10
//	theme = "Kanagawa"
//
// # Environment Overrides
//
//   - KEYBOT_ORIGIN, KEYBOT_API_BASE
//   - KEYBOT_TIMEOUT (Go duration, e.g. "10s")
//   - KEYBOT_LOG_LEVEL, KEYBOT_ENV
//   - KEYBOT_TOKEN_PATH, KEYBOT_LOG_PATH
//   - KEYBOT_RATE_LIMIT, KEYBOT_RATE_BURST
//   - KEYBOT_THEME
//
// # Path Expansion
//
// Paths starting with "~" are expanded to the home directory and every path
// is made absolute.
package config
