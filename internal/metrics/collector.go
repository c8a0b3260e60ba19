package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shapedtime/releasegrade/internal/feedback"
	"github.com/shapedtime/releasegrade/internal/quality"
)

// FeedbackSource provides the stored feedback summary.
type FeedbackSource interface {
	Stats(ctx context.Context) (*feedback.Stats, error)
}

// ModelState reports whether a trained classifier is active.
type ModelState interface {
	ModelLoaded() bool
}

// FeedbackCollector implements prometheus.Collector for stored feedback.
// It queries the feedback store lazily on each scrape rather than keeping
// duplicate counters.
type FeedbackCollector struct {
	source FeedbackSource
	model  ModelState // may be nil
	log    *slog.Logger

	feedbackEntries *prometheus.Desc
	modelLoaded     *prometheus.Desc
}

// NewFeedbackCollector creates a collector that reads feedback stats on demand.
func NewFeedbackCollector(src FeedbackSource, model ModelState) *FeedbackCollector {
	return &FeedbackCollector{
		source: src,
		model:  model,
		log:    slog.With("component", "feedback-collector"),

		feedbackEntries: prometheus.NewDesc(
			namespace+"_feedback_entries",
			"Stored feedback entries, by rating.",
			[]string{"rating"}, nil,
		),
		modelLoaded: prometheus.NewDesc(
			namespace+"_model_loaded",
			"1 if a trained classifier is active, 0 if rules are used.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *FeedbackCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.feedbackEntries
	ch <- c.modelLoaded
}

// Collect implements prometheus.Collector.
func (c *FeedbackCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := c.source.Stats(ctx)
	if err != nil {
		c.log.Warn("failed to collect feedback stats", "error", err)
	} else {
		for _, rating := range quality.Categories {
			ch <- prometheus.MustNewConstMetric(c.feedbackEntries, prometheus.GaugeValue,
				float64(stats.ByRating[rating]), string(rating))
		}
	}

	loaded := 0.0
	if c.model != nil && c.model.ModelLoaded() {
		loaded = 1
	}
	ch <- prometheus.MustNewConstMetric(c.modelLoaded, prometheus.GaugeValue, loaded)
}
