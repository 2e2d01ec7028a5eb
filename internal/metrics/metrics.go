// Package metrics collects per-run pipeline metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
	OutcomeFallback = "fallback"
)

// Metrics is a private registry per run, so tests and repeated runs never
// collide on global registration.
type Metrics struct {
	registry *prometheus.Registry

	StageTotal        *prometheus.CounterVec
	FallbackTotal     *prometheus.CounterVec
	RetrievalDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weavesearch",
				Name:      "stage_total",
				Help:      "Pipeline stage completions by outcome",
			},
			[]string{"stage", "outcome"},
		),
		FallbackTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weavesearch",
				Name:      "fallback_total",
				Help:      "Queries answered from the fallback table by topic",
			},
			[]string{"topic"},
		),
		RetrievalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "weavesearch",
				Name:      "retrieval_duration_seconds",
				Help:      "Remote search call duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}

	m.registry.MustRegister(m.StageTotal, m.FallbackTotal, m.RetrievalDuration)
	return m
}

// Stage records one stage completion.
func (m *Metrics) Stage(stage, outcome string) {
	m.StageTotal.WithLabelValues(stage, outcome).Inc()
}

// Fallback records a fallback answer. An unmatched topic is recorded as "none".
func (m *Metrics) Fallback(topic string) {
	if topic == "" {
		topic = "none"
	}
	m.FallbackTotal.WithLabelValues(topic).Inc()
}

func (m *Metrics) ObserveRetrieval(d time.Duration) {
	m.RetrievalDuration.Observe(d.Seconds())
}

// WriteFile writes the run's metrics in the text exposition format, for the
// node exporter textfile collector. The write is atomic.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
