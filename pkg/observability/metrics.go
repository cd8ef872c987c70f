// Package observability provides Prometheus instrumentation for engine runs,
// exposed through the same lifecycle hooks any other observer would use.
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/mosaicflow/mosaic/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine collectors.
type Metrics struct {
	runsTotal     *prometheus.CounterVec
	nodesTotal    *prometheus.CounterVec
	nodeDuration  *prometheus.HistogramVec
	nodesInFlight prometheus.Gauge

	mu     sync.Mutex
	starts map[string]time.Time
}

// NewMetrics creates and registers the collectors with the given registerer.
// Pass prometheus.DefaultRegisterer for the usual global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosaic_runs_total",
				Help: "Total number of whole-graph runs",
			},
			[]string{"outcome"},
		),
		nodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosaic_node_executions_total",
				Help: "Total number of node executions",
			},
			[]string{"kind", "outcome"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mosaic_node_duration_seconds",
				Help:    "Duration of node executions",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"kind"},
		),
		nodesInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mosaic_nodes_in_flight",
				Help: "Nodes currently executing",
			},
		),
		starts: make(map[string]time.Time),
	}
	reg.MustRegister(m.runsTotal, m.nodesTotal, m.nodeDuration, m.nodesInFlight)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors. Combine with other
// hooks via Chain when a host needs both metrics and its own observers.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunFinish: func(ctx context.Context, e *domain.RunEvent) {
			m.runsTotal.WithLabelValues(runOutcome(e)).Inc()
		},
		OnNodeStart: func(ctx context.Context, e *domain.NodeEvent) {
			m.nodesInFlight.Inc()
			m.mu.Lock()
			m.starts[e.NodeID] = e.Timestamp
			m.mu.Unlock()
		},
		OnNodeFinish: func(ctx context.Context, e *domain.NodeEvent) {
			m.nodesInFlight.Dec()

			m.mu.Lock()
			started, ok := m.starts[e.NodeID]
			delete(m.starts, e.NodeID)
			m.mu.Unlock()

			outcome := "success"
			if !e.Success {
				outcome = "failure"
			}
			m.nodesTotal.WithLabelValues(string(e.Kind), outcome).Inc()
			if ok {
				m.nodeDuration.WithLabelValues(string(e.Kind)).
					Observe(e.Timestamp.Sub(started).Seconds())
			}
		},
	}
}

func runOutcome(e *domain.RunEvent) string {
	switch {
	case e.Stopped:
		return "stopped"
	case e.Failed > 0:
		return "failure"
	default:
		return "success"
	}
}

// Chain merges several hook sets into one; every non-nil callback fires in
// order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnRunFinish: func(ctx context.Context, e *domain.RunEvent) {
			for _, h := range hooks {
				if h.OnRunFinish != nil {
					h.OnRunFinish(ctx, e)
				}
			}
		},
		OnNodeStart: func(ctx context.Context, e *domain.NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeStart != nil {
					h.OnNodeStart(ctx, e)
				}
			}
		},
		OnNodeFinish: func(ctx context.Context, e *domain.NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeFinish != nil {
					h.OnNodeFinish(ctx, e)
				}
			}
		},
	}
}
