package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/five82/ledgerview/internal/config"
	"github.com/five82/ledgerview/internal/connectivity"
	"github.com/five82/ledgerview/internal/fetch"
	"github.com/five82/ledgerview/internal/ledger"
	"github.com/five82/ledgerview/internal/metrics"
	"github.com/five82/ledgerview/internal/prefs"
	"github.com/five82/ledgerview/internal/ui"
)

// Options configure the ledgerview application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/ledgerview/prefs.toml
	PaymentID  string // empty restores the last viewed payment
}

// Run boots the ledgerview TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	userPrefs := prefs.Load(opts.PrefsPath)
	paymentID := strings.TrimSpace(opts.PaymentID)
	if paymentID == "" {
		paymentID = userPrefs.LastPayment
	}

	client, err := ledger.NewClient(cfg.APIURL, ledger.Options{
		Token:   cfg.APIToken,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("init ledger client: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sig := connectivity.NewSignal(cfg.Connectivity.FailureThreshold)
	connectivity.StartProber(ctx, sig, client, cfg.Connectivity.ProbeInterval,
		logger.With(slog.String("component", "prober")))

	recorder := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	ctrl := fetch.New(client.FetchPayment, controllerOptions(ctx, cfg, sig, recorder, logger))
	recorder.SetOnline(!ctrl.Status().Offline)

	logger.Info("ledgerview starting",
		slog.String("api_url", cfg.APIURL),
		slog.String("payment", paymentID),
		slog.Int("max_retries", cfg.Retry.MaxRetries))

	err = ui.Run(ui.Options{
		Context:    ctx,
		Controller: ctrl,
		PaymentID:  paymentID,
		APIURL:     cfg.APIURL,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
		Logger:     logger.With(slog.String("component", "ui")),
	})
	logger.Info("ledgerview stopped")
	return err
}

// controllerOptions maps config onto the fetch controller. A configured
// max_retries of zero means no retries at all.
func controllerOptions(ctx context.Context, cfg config.Config, conn fetch.Connectivity, rec *metrics.Recorder, logger *slog.Logger) fetch.Options {
	maxRetries := cfg.Retry.MaxRetries
	if maxRetries == 0 {
		maxRetries = -1
	}
	opts := fetch.Options{
		Context:    ctx,
		MaxRetries: maxRetries,
		Backoff: fetch.Backoff{
			Base:   cfg.Retry.BaseDelay,
			Cap:    cfg.Retry.MaxDelay,
			Jitter: cfg.Retry.Jitter,
		},
		Connectivity:   conn,
		AttemptTimeout: cfg.AttemptTimeout,
		Logger:         logger.With(slog.String("component", "fetch")),
	}
	if rec != nil {
		opts.OnChange = rec.ObserveChange
		opts.OnStale = rec.ObserveStale
	}
	return opts
}
