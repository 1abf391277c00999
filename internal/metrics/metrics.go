// Package metrics exposes playback counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wavestv"

// Recorder holds the playback metrics on a private registry. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	SessionsStarted  *prometheus.CounterVec
	InitFailures     prometheus.Counter
	TeardownFailures prometheus.Counter
	PlaybackErrors   prometheus.Counter
	ActiveSessions   prometheus.Gauge
	SeeksApplied     prometheus.Counter
	SeeksCoalesced   prometheus.Counter
	SeeksRejected    *prometheus.CounterVec
	AutoAdvances     *prometheus.CounterVec
	PreviewsStarted  prometheus.Counter
}

// New creates a recorder with every metric registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total playback sessions started by engine kind.",
		}, []string{"kind"}),
		InitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_init_failures_total",
			Help:      "Total sessions that failed to initialize.",
		}),
		TeardownFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_teardown_failures_total",
			Help:      "Total engine releases that returned an error.",
		}),
		PlaybackErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_errors_total",
			Help:      "Total error events emitted by engines.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live playback sessions.",
		}),
		SeeksApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeks_applied_total",
			Help:      "Total debounced seeks applied to an engine.",
		}),
		SeeksCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeks_coalesced_total",
			Help:      "Total seek requests superseded within the debounce window.",
		}),
		SeeksRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeks_rejected_total",
			Help:      "Total seek requests not applied, by outcome.",
		}, []string{"outcome"}),
		AutoAdvances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_advances_total",
			Help:      "Total automatic track advances by trigger.",
		}, []string{"trigger"}),
		PreviewsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "previews_started_total",
			Help:      "Total preview sessions started from the browse screen.",
		}),
	}
	r.registry.MustRegister(
		r.SessionsStarted,
		r.InitFailures,
		r.TeardownFailures,
		r.PlaybackErrors,
		r.ActiveSessions,
		r.SeeksApplied,
		r.SeeksCoalesced,
		r.SeeksRejected,
		r.AutoAdvances,
		r.PreviewsStarted,
	)
	return r
}

// Registry returns the registry the metrics are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) SessionStarted(kind string) {
	if r == nil {
		return
	}
	r.SessionsStarted.WithLabelValues(kind).Inc()
	r.ActiveSessions.Inc()
}

func (r *Recorder) SessionEnded() {
	if r == nil {
		return
	}
	r.ActiveSessions.Dec()
}

func (r *Recorder) InitFailure() {
	if r == nil {
		return
	}
	r.InitFailures.Inc()
}

func (r *Recorder) TeardownFailure() {
	if r == nil {
		return
	}
	r.TeardownFailures.Inc()
}

func (r *Recorder) PlaybackError() {
	if r == nil {
		return
	}
	r.PlaybackErrors.Inc()
}

func (r *Recorder) SeekApplied() {
	if r == nil {
		return
	}
	r.SeeksApplied.Inc()
}

func (r *Recorder) SeekCoalesced() {
	if r == nil {
		return
	}
	r.SeeksCoalesced.Inc()
}

func (r *Recorder) SeekRejected(outcome string) {
	if r == nil {
		return
	}
	r.SeeksRejected.WithLabelValues(outcome).Inc()
}

func (r *Recorder) AutoAdvance(trigger string) {
	if r == nil {
		return
	}
	r.AutoAdvances.WithLabelValues(trigger).Inc()
}

func (r *Recorder) PreviewStarted() {
	if r == nil {
		return
	}
	r.PreviewsStarted.Inc()
}

// Serve exposes the registry on addr at /metrics until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
