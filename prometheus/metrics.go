// Package prometheus records conversation machine metrics with
// client_golang and exports them in the text exposition format.
package prometheus

import (
	"context"

	"github.com/fwojciec/docchat/conversation"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds node counters and latencies on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	visits   *prometheus.CounterVec
	errors   *prometheus.CounterVec
	degraded *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the docchat node metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		visits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docchat_node_visits_total",
				Help: "Total number of node visits.",
			},
			[]string{"node"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docchat_node_errors_total",
				Help: "Total number of node visits that returned an error.",
			},
			[]string{"node"},
		),
		degraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docchat_node_degraded_total",
				Help: "Total number of node visits that contained a failure and fell back.",
			},
			[]string{"node"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docchat_node_duration_seconds",
				Help:    "Duration of node executions.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"node"},
		),
	}
	m.registry.MustRegister(m.visits, m.errors, m.degraded, m.duration)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns machine hooks that record every node visit.
func (m *Metrics) Hooks() conversation.Hooks {
	return conversation.Hooks{
		OnNodeLeave: func(_ context.Context, e conversation.NodeEvent) {
			node := string(e.Node)
			m.visits.WithLabelValues(node).Inc()
			m.duration.WithLabelValues(node).Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.errors.WithLabelValues(node).Inc()
			}
			if e.Contained != nil {
				m.degraded.WithLabelValues(node).Inc()
			}
		},
	}
}

// WriteFile writes the current metrics to path in the text format, for
// collection by a node exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
