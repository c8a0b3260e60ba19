package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shapedtime/releasegrade/internal/quality"
)

func TestSyntheticSamplesDeterministic(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	a := SyntheticSamples(20, 42)
	b := SyntheticSamples(20, 42)
	c := SyntheticSamples(20, 7)

	require.Len(a, 40)
	require.Equal(a, b)
	require.NotEqual(a, c)

	for _, s := range a[:20] {
		require.Equal(quality.CategoryExcellent, s.Label)
		require.GreaterOrEqual(s.Features.Seeders, 50.0)
		require.Less(s.Features.Seeders, 500.0)
	}
	for _, s := range a[20:] {
		require.Equal(quality.CategoryPoor, s.Label)
		require.Less(s.Features.FakeIndicators, 3.0)
	}
}

func TestFitStandardizer(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	rows := [][]float64{
		make([]float64, quality.NumFeatures),
		make([]float64, quality.NumFeatures),
	}
	rows[0][0], rows[1][0] = 2, 4

	s := FitStandardizer(rows)
	require.Equal(3.0, s.Mean[0])
	require.Equal(1.0, s.Std[0])
	// constant column
	require.Equal(1.0, s.Std[5])

	out, err := s.Transform(rows[1])
	require.NoError(err)
	require.Equal(1.0, out[0])

	_, err = s.Transform([]float64{1, 2})
	require.Error(err)
}

func TestTrainAndPredict(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	m, err := Train(SyntheticSamples(100, 42))
	require.NoError(err)
	require.Equal([]quality.Category{quality.CategoryExcellent, quality.CategoryPoor}, m.Labels)
	require.InDelta(0.5, m.Priors[0], 1e-12)

	good := SyntheticSamples(1, 99)[0].Features
	probs, err := m.PredictProba(good.Values())
	require.NoError(err)

	sum := 0.0
	for _, p := range probs {
		require.False(math.IsNaN(p))
		require.GreaterOrEqual(p, 0.0)
		sum += p
	}
	require.InDelta(1.0, sum, 1e-9)
	require.Greater(probs[quality.CategoryExcellent], probs[quality.CategoryPoor])

	poor := SyntheticSamples(1, 99)[1].Features
	probs, err = m.PredictProba(poor.Values())
	require.NoError(err)
	require.Greater(probs[quality.CategoryPoor], probs[quality.CategoryExcellent])
}

func TestTrainRejectsDegenerateInput(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	_, err := Train(nil)
	require.True(errors.Is(err, ErrNoSamples))

	onlyGood := SyntheticSamples(5, 1)[:5]
	_, err = Train(onlyGood)
	require.True(errors.Is(err, ErrSingleClass))
}

func TestPredictWrongLength(t *testing.T) {
	t.Parallel()

	m, err := Train(SyntheticSamples(10, 3))
	require.NoError(t, err)

	_, err = m.PredictProba([]float64{1, 2, 3})
	require.Error(t, err)
}

func TestModelDrivesClassify(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	m, err := Train(SyntheticSamples(100, 42))
	require.NoError(err)

	cfg := quality.MustDefault().WithClassifier(m)
	v := quality.Classify(quality.CandidateRecord{
		Title:     "Movie.2023.1080p.BluRay.DTS.x264-RARBG",
		SizeBytes: 8_000_000_000,
		Seeders:   200,
		Leechers:  10,
		Uploader:  "rarbg",
	}, cfg)

	require.Equal(quality.ScorerClassifier, v.Scorer)
	require.False(v.Fallback)
	require.GreaterOrEqual(v.QualityScore, 0.0)
	require.LessOrEqual(v.QualityScore, 1.0)
}
