// Package metrics exports router activity as Prometheus collectors on a
// private registry.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Metrics holds the router collectors. One instance is shared by every
// router of a process.
type Metrics struct {
	registry *prometheus.Registry

	StateChanges       prometheus.Counter
	DispatchPasses     *prometheus.CounterVec
	HandlerInvocations *prometheus.CounterVec
	UnmatchedKeys      prometheus.Counter
	ParseErrors        prometheus.Counter
	DispatchDuration   prometheus.Histogram
}

// New creates the collectors and registers them, with the Go and process
// collectors, on a new registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wayfinder_state_changes_total",
			Help: "Total number of state snapshots pushed onto router histories",
		}),
		DispatchPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayfinder_dispatch_passes_total",
			Help: "Total number of executed dispatch passes",
		}, []string{"result"}),
		HandlerInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayfinder_handler_invocations_total",
			Help: "Total number of handler chains started, by registered key",
		}, []string{"key", "mode"}),
		UnmatchedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wayfinder_unmatched_keys_total",
			Help: "Total number of state keys without a dispatcher",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wayfinder_parse_errors_total",
			Help: "Total number of URLs that failed to parse",
		}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wayfinder_dispatch_duration_seconds",
			Help:    "Duration of the synchronous part of dispatch passes",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	m.registry.MustRegister(
		m.StateChanges,
		m.DispatchPasses,
		m.HandlerInvocations,
		m.UnmatchedKeys,
		m.ParseErrors,
		m.DispatchDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns the router hooks that feed the counters.
func (m *Metrics) Hooks() wayfinder.Hooks {
	return wayfinder.Hooks{
		OnStateChange: func(context.Context, *domain.StateEvent) {
			m.StateChanges.Inc()
		},
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			switch e.Type {
			case domain.EventUnmatched:
				m.UnmatchedKeys.Inc()
			case domain.EventCreate, domain.EventCleanup:
				m.HandlerInvocations.WithLabelValues(e.Resolved, string(e.Type)).Inc()
			}
		},
		OnParseError: func(context.Context, string, error) {
			m.ParseErrors.Inc()
		},
	}
}

// ObserveReport records an executed dispatch pass.
func (m *Metrics) ObserveReport(_ context.Context, report dispatch.Report, elapsed time.Duration) {
	result := "completed"
	if report.Interrupted {
		result = "interrupted"
	}
	m.DispatchPasses.WithLabelValues(result).Inc()
	m.DispatchDuration.Observe(elapsed.Seconds())
}

// RouterOptions wires the collectors into a router. The signature fits
// session.WithRouterOptions.
func (m *Metrics) RouterOptions(string) []wayfinder.Option {
	return []wayfinder.Option{
		wayfinder.WithLifecycleHooks(m.Hooks()),
		wayfinder.WithReportHook(m.ObserveReport),
	}
}
