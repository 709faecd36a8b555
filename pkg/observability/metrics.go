// Package observability wires the engine's lifecycle hooks to Prometheus
// collectors: node executions, node durations, runs by terminal status.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/weftlabs/weft/pkg/domain"
)

// Metrics holds the engine collectors.
type Metrics struct {
	nodeExecutions *prometheus.CounterVec
	nodeDuration   *prometheus.HistogramVec
	runs           *prometheus.CounterVec
}

// New creates and registers the collectors. Pass prometheus.DefaultRegisterer
// for the global registry, or a private one in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodeExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_node_executions_total",
				Help: "Total number of node executions",
			},
			[]string{"node", "outcome"},
		),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "weft_node_duration_seconds",
				Help: "Duration of node executions",
			},
			[]string{"node"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_runs_total",
				Help: "Total number of workflow runs by terminal status",
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.nodeExecutions, m.nodeDuration, m.runs)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors. Compose with other
// hooks via Merge when logging hooks are also installed.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnd: func(ctx context.Context, e *domain.NodeEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.nodeExecutions.WithLabelValues(e.Node, outcome).Inc()
			m.nodeDuration.WithLabelValues(e.Node).Observe(e.Duration.Seconds())
		},
		OnRunEnd: func(ctx context.Context, r *domain.Result) {
			m.runs.WithLabelValues(string(r.Status)).Inc()
		},
	}
}

// Merge fans lifecycle callbacks out to multiple hook sets, in order.
func Merge(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeStart: func(ctx context.Context, e *domain.NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeStart != nil {
					h.OnNodeStart(ctx, e)
				}
			}
		},
		OnNodeEnd: func(ctx context.Context, e *domain.NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeEnd != nil {
					h.OnNodeEnd(ctx, e)
				}
			}
		},
		OnRunEnd: func(ctx context.Context, r *domain.Result) {
			for _, h := range hooks {
				if h.OnRunEnd != nil {
					h.OnRunEnd(ctx, r)
				}
			}
		},
	}
}
