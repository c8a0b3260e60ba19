package service

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shapedtime/releasegrade/internal/metrics"
	"github.com/shapedtime/releasegrade/internal/quality"
)

// Predictor grades candidates against the active scoring config. The config
// is swapped atomically when a new classifier is trained; a classification
// in flight keeps the config it started with.
type Predictor struct {
	cfg     atomic.Pointer[quality.ScoringConfig]
	metrics *metrics.Metrics // may be nil
	log     *slog.Logger
}

// NewPredictor creates a predictor using cfg until a classifier is set
func NewPredictor(cfg *quality.ScoringConfig, m *metrics.Metrics) *Predictor {
	p := &Predictor{
		metrics: m,
		log:     slog.With("component", "predictor"),
	}
	p.cfg.Store(cfg)
	return p
}

// Predict grades a single candidate
func (p *Predictor) Predict(rec quality.CandidateRecord) quality.QualityVerdict {
	start := time.Now()
	v := quality.Classify(rec, p.cfg.Load())
	if v.Fallback {
		p.log.Warn("classifier failed, used rule-based score", "title", rec.Title)
	}
	p.metrics.ObserveVerdict(v, time.Since(start))
	return v
}

// PredictBatch grades candidates in order and returns the index of the best
// non-fake candidate, or -1 if every candidate is fake.
func (p *Predictor) PredictBatch(recs []quality.CandidateRecord) ([]quality.QualityVerdict, int) {
	verdicts := make([]quality.QualityVerdict, len(recs))
	best := -1
	for i, rec := range recs {
		verdicts[i] = p.Predict(rec)
		if verdicts[i].IsFake {
			continue
		}
		if best < 0 || verdicts[i].QualityScore > verdicts[best].QualityScore {
			best = i
		}
	}
	return verdicts, best
}

// SetClassifier activates a trained classifier. nil reverts to rules only.
func (p *Predictor) SetClassifier(c quality.Classifier) {
	p.cfg.Store(p.cfg.Load().WithClassifier(c))
	p.log.Info("scoring config updated", "classifier", c != nil)
}

// ModelLoaded reports whether a trained classifier is active
func (p *Predictor) ModelLoaded() bool {
	return p.cfg.Load().Classifier() != nil
}

// Config returns the active scoring config
func (p *Predictor) Config() *quality.ScoringConfig {
	return p.cfg.Load()
}
