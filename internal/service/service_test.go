package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shapedtime/releasegrade/internal/feedback"
	"github.com/shapedtime/releasegrade/internal/model"
	"github.com/shapedtime/releasegrade/internal/quality"
)

type memStore struct {
	mu      sync.Mutex
	models  map[string]*model.NaiveBayes
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{models: make(map[string]*model.NaiveBayes)}
}

func (s *memStore) Save(name string, m *model.NaiveBayes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.models[name] = m
	return nil
}

func (s *memStore) Load(name string) (*model.NaiveBayes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.models[name]
	if !ok {
		return nil, model.ErrModelNotFound
	}
	return m, nil
}

type memFeedback []*feedback.Entry

func (f memFeedback) All(context.Context) ([]*feedback.Entry, error) { return f, nil }

func ratings(n int) memFeedback {
	var out memFeedback
	for i := range n {
		rating := quality.CategoryGood
		if i%2 == 0 {
			rating = quality.CategoryAcceptable
		}
		out = append(out, &feedback.Entry{
			Candidate: quality.CandidateRecord{Title: "Show.S01.720p.WEBRip", Seeders: int64(10 + i), Leechers: 4},
			Rating:    rating,
		})
	}
	return out
}

func testTrainerConfig() TrainerConfig {
	return TrainerConfig{RetrainEvery: 5, MinFeedback: 10, SyntheticSamples: 40, Seed: 42}
}

func TestPredictorUsesRulesByDefault(t *testing.T) {
	require := require.New(t)

	p := NewPredictor(quality.MustDefault(), nil)
	require.False(p.ModelLoaded())

	v := p.Predict(quality.CandidateRecord{Title: "Movie.2023.1080p.BluRay.x264-RARBG", Seeders: 200, Leechers: 10})
	require.Equal(quality.ScorerRuleBased, v.Scorer)
	require.Equal(quality.RecommendDownloadNow, v.Recommendation)
}

func TestPredictBatchPicksBestNonFake(t *testing.T) {
	require := require.New(t)

	p := NewPredictor(quality.MustDefault(), nil)
	verdicts, best := p.PredictBatch([]quality.CandidateRecord{
		{Title: "random_upload", Seeders: 3, Leechers: 5},
		{Title: "FREE_DOWNLOAD_password_required.exe", Seeders: 900},
		{Title: "Movie.2023.1080p.BluRay.x264-RARBG", Seeders: 200, Leechers: 10},
		{Title: "Movie.2023.1080p.BluRay.x264-RARBG", Seeders: 150, Leechers: 10},
	})
	require.Len(verdicts, 4)
	require.True(verdicts[1].IsFake)
	// ties keep the earlier candidate
	require.Equal(2, best)

	_, best = p.PredictBatch([]quality.CandidateRecord{{Title: "virus.exe", Description: "fake"}})
	require.Equal(-1, best)
}

func TestLoadOrTrainBuildsInitialModel(t *testing.T) {
	require := require.New(t)

	store := newMemStore()
	p := NewPredictor(quality.MustDefault(), nil)
	tr := NewTrainer(testTrainerConfig(), memFeedback{}, store, p, nil)

	require.NoError(tr.LoadOrTrain())
	require.True(p.ModelLoaded())

	saved, err := store.Load(ModelName)
	require.NoError(err)
	require.Equal(80, saved.Samples)

	// second start reuses the stored model
	p2 := NewPredictor(quality.MustDefault(), nil)
	tr2 := NewTrainer(testTrainerConfig(), memFeedback{}, store, p2, nil)
	require.NoError(tr2.LoadOrTrain())
	require.Same(saved, p2.Config().Classifier())
}

func TestLoadOrTrainSaveFailureKeepsRules(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	p := NewPredictor(quality.MustDefault(), nil)

	err := NewTrainer(testTrainerConfig(), memFeedback{}, store, p, nil).LoadOrTrain()
	require.Error(t, err)
	require.False(t, p.ModelLoaded())
}

func TestRetrainRequiresFeedback(t *testing.T) {
	p := NewPredictor(quality.MustDefault(), nil)
	tr := NewTrainer(testTrainerConfig(), ratings(3), newMemStore(), p, nil)

	_, err := tr.Retrain(context.Background())
	require.True(t, errors.Is(err, ErrNotEnoughFeedback))
	require.False(t, p.ModelLoaded())
}

func TestRetrainUsesFeedbackLabels(t *testing.T) {
	require := require.New(t)

	store := newMemStore()
	p := NewPredictor(quality.MustDefault(), nil)
	tr := NewTrainer(testTrainerConfig(), ratings(12), store, p, nil)

	m, err := tr.Retrain(context.Background())
	require.NoError(err)
	require.Equal(92, m.Samples)
	require.ElementsMatch([]quality.Category{
		quality.CategoryExcellent, quality.CategoryGood, quality.CategoryAcceptable, quality.CategoryPoor,
	}, m.Labels)
	require.True(p.ModelLoaded())

	v := p.Predict(quality.CandidateRecord{Title: "Show.S01.720p.WEBRip", Seeders: 12, Leechers: 4})
	require.Equal(quality.ScorerClassifier, v.Scorer)
}

func TestMaybeRetrain(t *testing.T) {
	require := require.New(t)

	p := NewPredictor(quality.MustDefault(), nil)
	tr := NewTrainer(testTrainerConfig(), ratings(10), newMemStore(), p, nil)

	require.False(tr.MaybeRetrain(0))
	require.False(tr.MaybeRetrain(7))
	require.True(tr.MaybeRetrain(10))
	tr.Wait()
	require.True(p.ModelLoaded())
}

func TestMaybeRetrainSkipsWhileRetrainRuns(t *testing.T) {
	require := require.New(t)

	p := NewPredictor(quality.MustDefault(), nil)
	tr := NewTrainer(testTrainerConfig(), ratings(10), newMemStore(), p, nil)

	// stands in for a manual retrain holding the lock
	tr.mu.Lock()
	require.False(tr.MaybeRetrain(10))
	_, err := tr.Retrain(context.Background())
	require.True(errors.Is(err, ErrRetrainInProgress))
	tr.mu.Unlock()

	require.True(tr.MaybeRetrain(10))
	tr.Wait()
	require.True(p.ModelLoaded())

	// lock is released by the background run
	_, err = tr.Retrain(context.Background())
	require.NoError(err)
}

func TestPredictDuringClassifierSwap(t *testing.T) {
	m, err := model.Train(model.SyntheticSamples(20, 42))
	require.NoError(t, err)

	p := NewPredictor(quality.MustDefault(), nil)
	recs := []quality.CandidateRecord{
		{Title: "Movie.2023.1080p.BluRay.x264-RARBG", Seeders: 200, Leechers: 10, Uploader: "rarbg"},
		{Title: "random_upload", Seeders: 3, Leechers: 5},
		{Title: "FREE_DOWNLOAD_password_required.exe", Seeders: 1},
	}
	rules := make([]quality.QualityVerdict, len(recs))
	for i, rec := range recs {
		rules[i] = quality.Classify(rec, quality.MustDefault())
	}

	stop := make(chan struct{})
	swapped := make(chan struct{})
	go func() {
		defer close(swapped)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				p.SetClassifier(m)
			} else {
				p.SetClassifier(nil)
			}
			time.Sleep(time.Microsecond)
		}
	}()

	const workers, rounds = 8, 200
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				idx := (w + i) % len(recs)
				v := p.Predict(recs[idx])
				if v.Fallback || v.QualityScore < 0 || v.QualityScore > 1 {
					errs <- fmt.Errorf("bad verdict for %q: %+v", recs[idx].Title, v)
					return
				}
				switch v.Scorer {
				case quality.ScorerRuleBased:
					if v.QualityScore != rules[idx].QualityScore || v.QualityCategory != rules[idx].QualityCategory {
						errs <- fmt.Errorf("rule verdict for %q differs: %+v", recs[idx].Title, v)
						return
					}
				case quality.ScorerClassifier:
					if !slices.Contains(m.Labels, v.QualityCategory) {
						errs <- fmt.Errorf("classifier category %q not a trained label", v.QualityCategory)
						return
					}
				default:
					errs <- fmt.Errorf("unknown scorer %q", v.Scorer)
					return
				}
				if v.Features != rules[idx].Features {
					errs <- fmt.Errorf("features for %q changed", recs[idx].Title)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-swapped
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
