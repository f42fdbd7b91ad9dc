// Package metrics exposes Prometheus counters for the payment fetch
// controller and an optional /metrics endpoint.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/ledgerview/internal/fetch"
)

const shutdownTimeout = 2 * time.Second

// Recorder owns a private registry so tests and multiple controllers never
// collide on the global one.
type Recorder struct {
	registry *prometheus.Registry

	attempts     prometheus.Counter
	retries      *prometheus.CounterVec
	retryDelay   prometheus.Histogram
	outcomes     *prometheus.CounterVec
	exhausted    prometheus.Counter
	staleDropped prometheus.Counter
	online       prometheus.Gauge
}

// New registers the fetch collectors plus the Go runtime collector.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	r := &Recorder{
		registry: reg,
		attempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerview_fetch_attempts_total",
			Help: "Total number of fetch attempts issued",
		}),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerview_fetch_retries_total",
				Help: "Total number of retries scheduled or deferred, by reason",
			},
			[]string{"reason"},
		),
		retryDelay: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgerview_fetch_retry_delay_seconds",
			Help:    "Backoff delay before scheduled retries",
			Buckets: []float64{0.5, 1, 2, 4, 8, 10, 30},
		}),
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerview_fetch_outcomes_total",
				Help: "Total number of finished fetches, by final state and reason",
			},
			[]string{"state", "reason"},
		),
		exhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerview_fetch_retries_exhausted_total",
			Help: "Total number of fetches that ran out of retries",
		}),
		staleDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerview_fetch_stale_dropped_total",
			Help: "Total number of superseded results and timers that were discarded",
		}),
		online: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerview_online",
			Help: "1 when the ledger API is considered reachable",
		}),
	}
	r.online.Set(1)
	return r
}

// ObserveChange is a fetch.Options.OnChange hook.
//
// The controller publishes two kinds of changes: connectivity-flag updates
// that leave everything else untouched, and state transitions. Only the
// latter are counted.
func (r *Recorder) ObserveChange(from, to fetch.Status) {
	if from.Offline != to.Offline {
		r.SetOnline(!to.Offline)
		return
	}

	switch to.State {
	case fetch.Loading:
		r.attempts.Inc()
	case fetch.Retrying:
		r.retries.WithLabelValues(reasonLabel(to.Reason)).Inc()
		if to.NextRetryDelay > 0 {
			r.retryDelay.Observe(to.NextRetryDelay.Seconds())
		}
	case fetch.Success:
		r.outcomes.WithLabelValues(to.State.String(), "none").Inc()
	case fetch.Failed:
		r.outcomes.WithLabelValues(to.State.String(), reasonLabel(to.Reason)).Inc()
		if to.RetriesExhausted() {
			r.exhausted.Inc()
		}
	}
}

// SetOnline seeds the connectivity gauge. ObserveChange only sees flips, so
// callers set the starting value from the signal.
func (r *Recorder) SetOnline(online bool) {
	if online {
		r.online.Set(1)
	} else {
		r.online.Set(0)
	}
}

// ObserveStale is a fetch.Options.OnStale hook.
func (r *Recorder) ObserveStale() {
	r.staleDropped.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is canceled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func reasonLabel(reason fetch.Reason) string {
	if reason == fetch.ReasonNone {
		return "none"
	}
	return string(reason)
}
