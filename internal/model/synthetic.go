package model

import (
	"math/rand/v2"

	"github.com/shapedtime/releasegrade/internal/quality"
)

// SyntheticSamples generates n excellent and n poor training rows. The same
// seed always produces the same rows.
func SyntheticSamples(n int, seed uint64) []Sample {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	samples := make([]Sample, 0, 2*n)

	for range n {
		samples = append(samples, Sample{
			Label: quality.CategoryExcellent,
			Features: quality.FeatureVector{
				SizeMB:             uniform(rng, 1000, 15000),
				Seeders:            float64(intRange(rng, 50, 500)),
				Leechers:           float64(intRange(rng, 5, 50)),
				SeedLeechRatio:     uniform(rng, 2, 20),
				TitleLength:        float64(intRange(rng, 30, 80)),
				HasYear:            1,
				HasQuality:         1,
				HasSource:          1,
				KnownReleaseGroups: float64(intRange(rng, 1, 3)),
				FakeIndicators:     0,
				VideoQualityScore:  1,
				AudioQualityScore:  1,
				SourceQualityScore: 1,
				UploaderReputation: uniform(rng, 0.7, 1.0),
			},
		})
	}

	for range n {
		samples = append(samples, Sample{
			Label: quality.CategoryPoor,
			Features: quality.FeatureVector{
				SizeMB:             uniform(rng, 100, 1000),
				Seeders:            float64(intRange(rng, 1, 20)),
				Leechers:           float64(intRange(rng, 0, 10)),
				SeedLeechRatio:     uniform(rng, 0.1, 1.5),
				TitleLength:        float64(intRange(rng, 10, 40)),
				HasYear:            float64(rng.IntN(2)),
				KnownReleaseGroups: 0,
				FakeIndicators:     float64(intRange(rng, 0, 3)),
				UploaderReputation: uniform(rng, 0.1, 0.5),
			},
		})
	}

	return samples
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// intRange returns an int in [lo, hi)
func intRange(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo)
}
