package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shapedtime/releasegrade/internal/feedback"
	"github.com/shapedtime/releasegrade/internal/metrics"
	"github.com/shapedtime/releasegrade/internal/model"
	"github.com/shapedtime/releasegrade/internal/quality"
)

// ErrNotEnoughFeedback is returned when a retrain is requested with too few ratings
var ErrNotEnoughFeedback = errors.New("not enough feedback to retrain")

// ErrRetrainInProgress is returned when a retrain is already running
var ErrRetrainInProgress = errors.New("retrain already in progress")

// ModelName is the key the quality classifier is stored under
const ModelName = "quality"

// FeedbackSource lists stored ratings
type FeedbackSource interface {
	All(ctx context.Context) ([]*feedback.Entry, error)
}

// ModelStore persists trained classifiers
type ModelStore interface {
	Save(name string, m *model.NaiveBayes) error
	Load(name string) (*model.NaiveBayes, error)
}

// ClassifierSink receives newly trained classifiers
type ClassifierSink interface {
	SetClassifier(c quality.Classifier)
	Config() *quality.ScoringConfig
}

// TrainerConfig controls when and how the classifier is retrained
type TrainerConfig struct {
	RetrainEvery     int
	MinFeedback      int
	SyntheticSamples int
	Seed             uint64
}

// Trainer builds the optional quality classifier from synthetic samples and
// stored feedback, persists it and hands it to the predictor.
type Trainer struct {
	cfg     TrainerConfig
	source  FeedbackSource
	store   ModelStore
	sink    ClassifierSink
	metrics *metrics.Metrics // may be nil
	log     *slog.Logger

	mu sync.Mutex // serialises training runs
	wg sync.WaitGroup
}

// NewTrainer creates a trainer
func NewTrainer(cfg TrainerConfig, source FeedbackSource, store ModelStore, sink ClassifierSink, m *metrics.Metrics) *Trainer {
	return &Trainer{
		cfg:     cfg,
		source:  source,
		store:   store,
		sink:    sink,
		metrics: m,
		log:     slog.With("component", "trainer"),
	}
}

// LoadOrTrain activates the persisted classifier, training and saving an
// initial synthetic-only model when none exists. On error the predictor
// keeps using rules.
func (t *Trainer) LoadOrTrain() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := t.store.Load(ModelName)
	if err == nil {
		t.log.Info("loaded existing quality model", "samples", m.Samples, "trained_at", m.TrainedAt)
		t.sink.SetClassifier(m)
		return nil
	}
	if !errors.Is(err, model.ErrModelNotFound) {
		return fmt.Errorf("failed to load model: %w", err)
	}

	t.log.Info("training initial model with synthetic data")
	m, err = model.Train(model.SyntheticSamples(t.cfg.SyntheticSamples, t.cfg.Seed))
	if err != nil {
		return fmt.Errorf("failed to train initial model: %w", err)
	}
	if err := t.store.Save(ModelName, m); err != nil {
		return fmt.Errorf("failed to save initial model: %w", err)
	}

	t.sink.SetClassifier(m)
	t.log.Info("initial model trained", "samples", m.Samples)
	return nil
}

// Retrain trains a new classifier from synthetic samples plus all stored
// feedback and activates it.
func (t *Trainer) Retrain(ctx context.Context) (*model.NaiveBayes, error) {
	if !t.mu.TryLock() {
		return nil, ErrRetrainInProgress
	}
	defer t.mu.Unlock()

	m, err := t.retrain(ctx)
	t.metrics.ObserveRetrain(err)
	return m, err
}

func (t *Trainer) retrain(ctx context.Context) (*model.NaiveBayes, error) {
	entries, err := t.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	if len(entries) < t.cfg.MinFeedback {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughFeedback, len(entries), t.cfg.MinFeedback)
	}

	t.log.Info("retraining model", "feedback", len(entries))

	scoring := t.sink.Config()
	samples := model.SyntheticSamples(t.cfg.SyntheticSamples, t.cfg.Seed)
	for _, e := range entries {
		samples = append(samples, model.Sample{
			Features: quality.Extract(e.Candidate, scoring),
			Label:    e.Rating,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := model.Train(samples)
	if err != nil {
		return nil, fmt.Errorf("failed to train model: %w", err)
	}
	if err := t.store.Save(ModelName, m); err != nil {
		return nil, fmt.Errorf("failed to save model: %w", err)
	}

	t.sink.SetClassifier(m)
	t.log.Info("model retraining completed", "samples", m.Samples, "labels", m.Labels)
	return m, nil
}

// MaybeRetrain starts a background retrain when count is a positive multiple
// of the configured interval. It reports false when no retrain was started,
// including when another retrain is already running.
func (t *Trainer) MaybeRetrain(count int64) bool {
	if t.cfg.RetrainEvery <= 0 || count <= 0 || count%int64(t.cfg.RetrainEvery) != 0 {
		return false
	}

	// The lock is taken here and released by the goroutine
	if !t.mu.TryLock() {
		t.log.Info("retrain already in progress, skipping scheduled retrain", "feedback", count)
		return false
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.mu.Unlock()

		_, err := t.retrain(context.Background())
		t.metrics.ObserveRetrain(err)
		if err != nil {
			t.log.Warn("background retrain failed", "error", err)
		}
	}()
	return true
}

// Wait blocks until background retrains finish
func (t *Trainer) Wait() {
	t.wg.Wait()
}
