package quality

const (
	fakeWeight    = 0.30
	fakeThreshold = 0.5
)

// DetectFake returns the fake probability and flag for a feature vector.
// One indicator gives 0.3 (not fake), two give 0.6 (fake).
func DetectFake(fv FeatureVector) (float64, bool) {
	if fv.FakeIndicators <= 0 {
		return 0.0, false
	}
	p := clamp01(fv.FakeIndicators * fakeWeight)
	return p, p > fakeThreshold
}

// Categorize maps a score to its category. It ignores whether the candidate is fake.
func Categorize(score float64, t Thresholds) Category {
	switch {
	case score >= t.Excellent:
		return CategoryExcellent
	case score >= t.Good:
		return CategoryGood
	case score >= t.Acceptable:
		return CategoryAcceptable
	default:
		return CategoryPoor
	}
}

// Recommend applies the decision table; the first matching rule wins
func Recommend(score float64, isFake bool, t Thresholds) Recommendation {
	switch {
	case isFake:
		return RecommendRejectFake
	case score >= t.Excellent:
		return RecommendDownloadNow
	case score >= t.Good:
		return RecommendDownload
	case score >= t.Acceptable:
		return RecommendDownloadIfNothing
	default:
		return RecommendRejectPoor
	}
}
