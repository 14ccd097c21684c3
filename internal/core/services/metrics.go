package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Evaluation outcome metrics
	evaluationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustgate_evaluations_total",
		Help: "Total number of trust evaluations",
	}, []string{"policy", "result", "reason"})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trustgate_evaluation_duration_seconds",
		Help:    "Duration of trust evaluations",
		Buckets: prometheus.DefBuckets,
	})

	// Pin reload metrics
	pinReloadCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustgate_pin_reloads_total",
		Help: "Total number of pin configuration reload attempts",
	}, []string{"result"}) // result: success, failure
)

// MetricsReporter interface for reporting trust-evaluation metrics.
type MetricsReporter interface {
	RecordEvaluation(policy, result, reason string, duration float64)
	RecordPinReload(success bool)
}

// PrometheusMetrics implements MetricsReporter using Prometheus.
type PrometheusMetrics struct{}

// NewPrometheusMetrics creates a new Prometheus metrics reporter.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{}
}

// RecordEvaluation records one evaluation outcome.
func (m *PrometheusMetrics) RecordEvaluation(policy, result, reason string, duration float64) {
	evaluationCounter.WithLabelValues(policy, result, reason).Inc()
	evaluationDuration.Observe(duration)
}

// RecordPinReload records a pin configuration reload attempt.
func (m *PrometheusMetrics) RecordPinReload(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	pinReloadCounter.WithLabelValues(result).Inc()
}

// NoOpMetrics implements MetricsReporter with no-op methods for when metrics
// are disabled.
type NoOpMetrics struct{}

// RecordEvaluation no-op implementation.
func (m *NoOpMetrics) RecordEvaluation(policy, result, reason string, duration float64) {}

// RecordPinReload no-op implementation.
func (m *NoOpMetrics) RecordPinReload(success bool) {}
