// Package app provides the orchestration layer for the ledgerview application.
//
// # Overview
//
// This package wires together configuration, logging, the ledger client, the
// connectivity prober, metrics and the UI. It is the composition root where
// all dependencies are initialized and connected.
//
// # Architecture
//
//  1. Load config from ~/.config/ledgerview/config.toml, .env and the environment
//  2. Open the log file and build a tint slog handler (no colors)
//  3. Load prefs: theme and the last viewed payment id
//  4. Create the ledger HTTP client
//  5. Start the connectivity prober against /api/health
//  6. Optionally serve Prometheus metrics on metrics_addr
//  7. Build the fetch controller and hand it to ui.Run (blocks)
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()            Read config, .env, environment
//	       ├─────> newLogger()              File-backed slog/tint logger
//	       ├─────> ledger.NewClient()       HTTP client
//	       ├─────> connectivity.StartProber() Background reachability probe
//	       ├─────> metrics.Serve()          Optional /metrics endpoint
//	       ├─────> fetch.New()              Retry controller
//	       └─────> ui.Run()                 Start TUI (blocks)
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration
//   - Log file cannot be opened
//   - Invalid API URL
//
// Everything that happens after startup (API failures, lost connectivity,
// metrics server errors) is logged and surfaced in the UI instead.
//
// # Usage Example
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := app.Run(ctx, app.Options{PaymentID: "p-1042"}); err != nil {
//		log.Fatalf("ledgerview failed: %v", err)
//	}
package app
