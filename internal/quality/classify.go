// Package quality grades torrent search results: it extracts a feature
// vector from a candidate, scores it, flags likely fakes and turns the
// result into a category and a download recommendation.
//
// Everything in this package is a pure function of its inputs. A
// ScoringConfig is read-only once built, so Classify may be called from any
// number of goroutines without coordination.
package quality

// Classify grades a candidate. It always returns a verdict: if the config
// carries a classifier that fails, the rule-based score is used instead and
// the verdict is marked as a fallback.
//
// With a classifier the category is its most probable label and the score is
// that label's probability. The recommendation is still derived from the
// score, so a confidently "poor" candidate can be recommended for download.
func Classify(rec CandidateRecord, cfg *ScoringConfig) QualityVerdict {
	fv := Extract(rec, cfg)

	score, scorer, fallback := scoreFeatures(fv, cfg)

	fakeProb, isFake := DetectFake(fv)

	category := score.Category
	if category == "" {
		category = Categorize(score.Value, cfg.thresholds)
	}

	return QualityVerdict{
		QualityScore:    score.Value,
		QualityCategory: category,
		IsFake:          isFake,
		FakeProbability: fakeProb,
		Recommendation:  Recommend(score.Value, isFake, cfg.thresholds),
		Features:        fv,
		Scorer:          scorer,
		Fallback:        fallback,
	}
}

func scoreFeatures(fv FeatureVector, cfg *ScoringConfig) (Score, string, bool) {
	rules := RuleBasedScorer{}

	if cfg.classifier != nil {
		cs := ClassifierScorer{Classifier: cfg.classifier}
		if s, err := cs.Score(fv); err == nil {
			return s, cs.Name(), false
		}
		s, _ := rules.Score(fv)
		return s, rules.Name(), true
	}

	s, _ := rules.Score(fv)
	return s, rules.Name(), false
}
