package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amebel/hyperon-experimental/pkg/config"
)

// EvaluationMetrics tracks interpreter activity.
//
// Metrics:
//   - hyperon_metta_evaluations_total: Top-level evaluations by outcome
//   - hyperon_metta_evaluation_duration_seconds: Evaluation duration histogram
//   - hyperon_metta_evaluation_steps: Reduction steps per evaluation
//   - hyperon_metta_evaluation_results: Results per evaluation
//   - hyperon_metta_grounded_calls_total: Grounded operation calls by status
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	evaluationSteps    prometheus.Histogram
	evaluationResults  prometheus.Histogram
	groundedCallsTotal *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics with the
// provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of top-level evaluations",
			},
			[]string{"outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of top-level evaluations in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"outcome"},
		),

		evaluationSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_steps",
				Help:      "Reduction steps taken per evaluation",
				Buckets:   cfg.StepBuckets,
			},
		),

		evaluationResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_results",
				Help:      "Results produced per evaluation",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),

		groundedCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "grounded_calls_total",
				Help:      "Total number of grounded operation executions",
			},
			[]string{"operation", "status"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.evaluationSteps,
		em.evaluationResults,
		em.groundedCallsTotal,
	)
	return em
}

// RecordEvaluation records a finished evaluation.
func (em *EvaluationMetrics) RecordEvaluation(outcome string, steps, results int, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(outcome).Inc()
	em.evaluationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	em.evaluationSteps.Observe(float64(steps))
	em.evaluationResults.Observe(float64(results))
}

// RecordGroundedCall records one grounded operation execution.
func (em *EvaluationMetrics) RecordGroundedCall(operation, status string) {
	em.groundedCallsTotal.WithLabelValues(operation, status).Inc()
}
