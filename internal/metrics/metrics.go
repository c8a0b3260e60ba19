package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shapedtime/releasegrade/internal/quality"
)

const namespace = "releasegrade"

// Metrics holds prediction metrics recorded on the request path.
type Metrics struct {
	Predictions         *prometheus.CounterVec
	FakesDetected       prometheus.Counter
	ClassifierFallbacks prometheus.Counter
	PredictDuration     prometheus.Histogram
	QualityScores       prometheus.Histogram
	FeedbackReceived    *prometheus.CounterVec
	Retrains            *prometheus.CounterVec
}

// New creates and registers prediction metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predict",
			Name:      "verdicts_total",
			Help:      "Verdicts produced, by category, recommendation and scorer.",
		}, []string{"category", "recommendation", "scorer"}),
		FakesDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predict",
			Name:      "fakes_total",
			Help:      "Candidates flagged as fake.",
		}),
		ClassifierFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predict",
			Name:      "classifier_fallbacks_total",
			Help:      "Predictions where the trained classifier failed and rules were used.",
		}),
		PredictDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "predict",
			Name:      "duration_seconds",
			Help:      "Duration of a single candidate classification.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		QualityScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "predict",
			Name:      "quality_score",
			Help:      "Distribution of produced quality scores.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.55, 0.6, 0.7, 0.8, 0.85, 0.9, 1},
		}),
		FeedbackReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feedback",
			Name:      "received_total",
			Help:      "Feedback entries accepted, by rating.",
		}, []string{"rating"}),
		Retrains: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "retrains_total",
			Help:      "Classifier retraining runs, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.Predictions,
		m.FakesDetected,
		m.ClassifierFallbacks,
		m.PredictDuration,
		m.QualityScores,
		m.FeedbackReceived,
		m.Retrains,
	)

	return m
}

// ObserveVerdict records one classification. Safe to call on a nil Metrics.
func (m *Metrics) ObserveVerdict(v quality.QualityVerdict, took time.Duration) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(string(v.QualityCategory), string(v.Recommendation), v.Scorer).Inc()
	if v.IsFake {
		m.FakesDetected.Inc()
	}
	if v.Fallback {
		m.ClassifierFallbacks.Inc()
	}
	m.PredictDuration.Observe(took.Seconds())
	m.QualityScores.Observe(v.QualityScore)
}

// ObserveFeedback records an accepted feedback entry. Safe to call on a nil Metrics.
func (m *Metrics) ObserveFeedback(rating quality.Category) {
	if m == nil {
		return
	}
	m.FeedbackReceived.WithLabelValues(string(rating)).Inc()
}

// ObserveRetrain records a retraining run. Safe to call on a nil Metrics.
func (m *Metrics) ObserveRetrain(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.Retrains.WithLabelValues(result).Inc()
}
