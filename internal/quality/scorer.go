package quality

import (
	"errors"
	"fmt"
	"math"
)

// Scorer names reported in verdicts
const (
	ScorerRuleBased  = "rule_based"
	ScorerClassifier = "classifier"
)

// Score is the output of a Scorer. Category is empty when the
// scorer leaves categorisation to the threshold table.
type Score struct {
	Value    float64
	Category Category
}

// Scorer turns a feature vector into a quality score
type Scorer interface {
	Name() string
	Score(fv FeatureVector) (Score, error)
}

// Classifier predicts per-category probabilities from a feature slice
// ordered as FeatureNames. Implementations must be safe for concurrent use.
type Classifier interface {
	PredictProba(features []float64) (map[Category]float64, error)
}

// Weights of the rule-based scorer
const (
	baseScore          = 0.5
	strongRatioBonus   = 0.15
	moderateRatioBonus = 0.10
	videoWeight        = 0.10
	audioWeight        = 0.05
	sourceWeight       = 0.10
	releaseGroupWeight = 0.10
	fakePenalty        = 0.20
)

// RuleBasedScorer is the weighted-sum heuristic. It is always available.
type RuleBasedScorer struct{}

func (RuleBasedScorer) Name() string { return ScorerRuleBased }

// Score never returns an error
func (RuleBasedScorer) Score(fv FeatureVector) (Score, error) {
	score := baseScore

	switch {
	case fv.SeedLeechRatio > 2:
		score += strongRatioBonus
	case fv.SeedLeechRatio > 1:
		score += moderateRatioBonus
	}

	score += fv.VideoQualityScore * videoWeight
	score += fv.AudioQualityScore * audioWeight
	score += fv.SourceQualityScore * sourceWeight
	score += fv.KnownReleaseGroups * releaseGroupWeight

	score -= fv.FakeIndicators * fakePenalty

	return Score{Value: clamp01(score)}, nil
}

// ClassifierScorer scores with a trained classifier. The score is the
// highest predicted class probability and the category its class.
type ClassifierScorer struct {
	Classifier Classifier
}

func (ClassifierScorer) Name() string { return ScorerClassifier }

var errNoPrediction = errors.New("classifier returned no usable probabilities")

func (s ClassifierScorer) Score(fv FeatureVector) (_ Score, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panicked: %v", r)
		}
	}()

	if s.Classifier == nil {
		return Score{}, errors.New("no classifier configured")
	}

	probs, err := s.Classifier.PredictProba(fv.Values())
	if err != nil {
		return Score{}, fmt.Errorf("classifier prediction failed: %w", err)
	}

	best := Score{Value: -1}
	// Iterate in fixed order so ties resolve the same way every time.
	for _, c := range Categories {
		p, ok := probs[c]
		if !ok {
			continue
		}
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Score{}, errNoPrediction
		}
		if p > best.Value {
			best = Score{Value: p, Category: c}
		}
	}
	if best.Category == "" {
		return Score{}, errNoPrediction
	}

	best.Value = clamp01(best.Value)
	return best, nil
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0.0), 1.0)
}
