package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/ledgerview/internal/config"
	"github.com/five82/ledgerview/internal/connectivity"
	"github.com/five82/ledgerview/internal/metrics"
)

func TestControllerOptions_MapsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Retry = config.RetryConfig{MaxRetries: 5, BaseDelay: 500 * time.Millisecond, MaxDelay: 4 * time.Second, Jitter: 0.2}
	cfg.AttemptTimeout = 3 * time.Second
	sig := connectivity.NewSignal(2)

	opts := controllerOptions(context.Background(), cfg, sig, metrics.New(), slog.New(slog.DiscardHandler))

	if opts.MaxRetries != 5 {
		t.Fatalf("MaxRetries = %d, want 5", opts.MaxRetries)
	}
	if opts.Backoff.Base != 500*time.Millisecond || opts.Backoff.Cap != 4*time.Second || opts.Backoff.Jitter != 0.2 {
		t.Fatalf("Backoff = %+v", opts.Backoff)
	}
	if opts.AttemptTimeout != 3*time.Second {
		t.Fatalf("AttemptTimeout = %v, want 3s", opts.AttemptTimeout)
	}
	if opts.Connectivity == nil || opts.OnChange == nil || opts.OnStale == nil {
		t.Fatalf("connectivity and metrics hooks should be wired")
	}
}

func TestControllerOptions_ZeroRetriesDisablesRetry(t *testing.T) {
	cfg := config.Default()
	cfg.Retry.MaxRetries = 0

	opts := controllerOptions(context.Background(), cfg, nil, nil, slog.New(slog.DiscardHandler))
	if opts.MaxRetries >= 0 {
		t.Fatalf("MaxRetries = %d, want negative to disable retries", opts.MaxRetries)
	}
	if opts.OnChange != nil {
		t.Fatalf("OnChange set without a recorder")
	}
}

func TestNewLogger_WritesPlainTextAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledgerview.log")
	logger, closeLog, err := newLogger(path, "warn")
	if err != nil {
		t.Fatalf("newLogger returned error: %v", err)
	}

	logger.Info("hidden message")
	logger.Warn("fetch retry scheduled", slog.Int("attempt", 2))
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden message") {
		t.Fatalf("info line written at warn level:\n%s", out)
	}
	if !strings.Contains(out, "fetch retry scheduled") || !strings.Contains(out, "attempt=2") {
		t.Fatalf("warn line missing:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("log file contains ANSI escapes:\n%q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewTextLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	newTextLogger(&buf, "debug").Debug("probe failed")
	if !strings.Contains(buf.String(), "probe failed") {
		t.Fatalf("debug line missing: %q", buf.String())
	}
}
