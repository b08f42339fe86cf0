package provisioning

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Step results recorded in dropkit_pipeline_steps_total.
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
)

// Metrics holds the collectors of a single run. Each run owns its registry,
// so nothing leaks between runs in the same process. A nil *Metrics records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	reconcileTotal *prometheus.CounterVec
	stepDuration   *prometheus.HistogramVec
	stepsTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers the run collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reconcileTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dropkit",
				Subsystem: "keys",
				Name:      "reconcile_total",
				Help:      "Key reconciliations by result",
			},
			[]string{"result"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dropkit",
				Subsystem: "pipeline",
				Name:      "step_duration_seconds",
				Help:      "Duration of pipeline steps in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16), // 10ms to ~5min
			},
			[]string{"step"},
		),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dropkit",
				Subsystem: "pipeline",
				Name:      "steps_total",
				Help:      "Pipeline steps run by result",
			},
			[]string{"step", "result"},
		),
	}
	m.registry.MustRegister(m.reconcileTotal, m.stepDuration, m.stepsTotal)
	return m
}

// Registry returns the run's registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveReconcile counts one key reconciliation outcome.
func (m *Metrics) ObserveReconcile(result string) {
	if m == nil {
		return
	}
	m.reconcileTotal.WithLabelValues(result).Inc()
}

// ObserveStep records one finished step.
func (m *Metrics) ObserveStep(step, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stepsTotal.WithLabelValues(step, result).Inc()
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// WriteToTextfile writes the run's metrics in the text exposition format,
// for pickup by a node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
