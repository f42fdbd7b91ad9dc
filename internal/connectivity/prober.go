package connectivity

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultProbeInterval = 5 * time.Second
	probeTimeout         = 3 * time.Second
)

// Pinger checks whether the remote API is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StartProber launches a background goroutine that probes pinger at a fixed
// cadence and feeds the results into sig. It returns immediately.
func StartProber(ctx context.Context, sig *Signal, pinger Pinger, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			probe(ctx, sig, pinger, logger)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func probe(ctx context.Context, sig *Signal, pinger Pinger, logger *slog.Logger) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := pinger.Ping(probeCtx)
	if ctx.Err() != nil {
		// Shutting down; a canceled probe says nothing about the network.
		return
	}
	ev, changed := sig.Observe(err)
	switch {
	case changed && ev.Online:
		logger.Info("connectivity restored")
	case changed:
		logger.Warn("connectivity lost", slog.Any("error", err))
	case err != nil:
		logger.Debug("probe failed", slog.Any("error", err))
	}
}
