package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/san-kum/ccdsim/internal/engine"
)

const (
	kindLabel    = "kind"
	backendLabel = "backend"
)

var (
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ccdsim_steps_total",
		Help: "The number of completed steps.",
	}, []string{
		backendLabel,
	})

	stepErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ccdsim_step_errors_total",
		Help: "The number of steps that failed.",
	}, []string{
		backendLabel,
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ccdsim_events_total",
		Help: "The number of resolved contacts.",
	}, []string{
		kindLabel,
	})

	treeNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ccdsim_tree_nodes",
		Help:    "The number of tree nodes built per step.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	stepLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ccdsim_step_seconds",
		Help:    "The time to advance one step.",
		Buckets: prometheus.ExponentialBuckets(1e-5, 4, 12),
	}, []string{
		backendLabel,
	})
)

// InstrumentStep records the outcome of one engine step.
func InstrumentStep(backend string, stats engine.StepStats, start time.Time, err error) {
	labels := prometheus.Labels{backendLabel: backend}

	stepLatency.With(labels).Observe(time.Since(start).Seconds())
	if err != nil {
		stepErrors.With(labels).Inc()
		return
	}
	stepsTotal.With(labels).Inc()
	treeNodes.Observe(float64(stats.Nodes))

	eventsTotal.With(prometheus.Labels{kindLabel: "anchor"}).Add(float64(stats.AnchorEvents))
	eventsTotal.With(prometheus.Labels{kindLabel: "elastic"}).Add(float64(stats.Events - stats.AnchorEvents))
}
