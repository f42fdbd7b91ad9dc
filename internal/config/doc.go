// Package config loads ledgerview configuration.
//
// # Overview
//
// Settings come from three layers, later layers winning:
//
//  1. Built-in defaults (see Default)
//  2. A TOML file, ~/.config/ledgerview/config.toml unless a path is given
//  3. Environment overrides: ./.env (read with godotenv, never exported into
//     the process) and then the real process environment
//
// A missing config file or .env is not an error.
//
// # TOML Format
//
//	api_url = "https://ledger.example.com"
//	api_token = "..."
//	log_file = "~/.local/state/ledgerview/ledgerview.log"
//	log_level = "info"            # debug, info, warn, error
//	metrics_addr = "127.0.0.1:9464"
//	request_timeout_ms = 10000
//	attempt_timeout_ms = 0        # 0 leaves attempts to request_timeout_ms
//
//	[retry]
//	max_retries = 3               # retries after the first attempt
//	base_delay_ms = 1000
//	max_delay_ms = 10000
//	jitter = 0.0                  # 0..1, shortens delays only
//
//	[connectivity]
//	probe_interval_ms = 5000
//	failure_threshold = 2
//
// # Environment
//
//   - LEDGERVIEW_API_URL
//   - LEDGERVIEW_API_TOKEN
//   - LEDGERVIEW_LOG_LEVEL
//   - LEDGERVIEW_METRICS_ADDR
//
// Tilde expansion applies to the config path and log_file.
package config
