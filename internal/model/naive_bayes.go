// Package model holds the optional trained classifier used in place of the
// rule-based quality score: a Gaussian naive Bayes model over standardised
// feature vectors, its training data and its badger-backed persistence.
package model

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/shapedtime/releasegrade/internal/quality"
)

// varSmoothing is added to every variance, scaled by the largest feature variance
const varSmoothing = 1e-9

// Sample is one labelled training row
type Sample struct {
	Features quality.FeatureVector
	Label    quality.Category
}

// Standardizer rescales features to zero mean and unit variance
type Standardizer struct {
	Mean []float64
	Std  []float64
}

// FitStandardizer computes per-column mean and standard deviation.
// Constant columns get a standard deviation of 1.
func FitStandardizer(rows [][]float64) Standardizer {
	n := quality.NumFeatures
	s := Standardizer{Mean: make([]float64, n), Std: make([]float64, n)}
	if len(rows) == 0 {
		for i := range s.Std {
			s.Std[i] = 1
		}
		return s
	}

	for _, row := range rows {
		for i, v := range row {
			s.Mean[i] += v
		}
	}
	for i := range s.Mean {
		s.Mean[i] /= float64(len(rows))
	}

	for _, row := range rows {
		for i, v := range row {
			d := v - s.Mean[i]
			s.Std[i] += d * d
		}
	}
	for i := range s.Std {
		s.Std[i] = math.Sqrt(s.Std[i] / float64(len(rows)))
		if s.Std[i] == 0 {
			s.Std[i] = 1
		}
	}
	return s
}

// Transform returns a standardised copy of row
func (s Standardizer) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) || len(row) != len(s.Std) {
		return nil, fmt.Errorf("feature length %d does not match scaler length %d", len(row), len(s.Mean))
	}
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - s.Mean[i]) / s.Std[i]
	}
	return out, nil
}

// NaiveBayes is a Gaussian naive Bayes classifier with a built-in scaler.
// It is immutable after Train and safe for concurrent PredictProba calls.
type NaiveBayes struct {
	Labels    []quality.Category
	Priors    []float64
	Means     [][]float64
	Variances [][]float64
	Scaler    Standardizer
	Samples   int
	TrainedAt time.Time
}

var _ quality.Classifier = (*NaiveBayes)(nil)

// Train fits a model on samples. At least two distinct labels are required.
func Train(samples []Sample) (*NaiveBayes, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	rows := make([][]float64, len(samples))
	for i, s := range samples {
		rows[i] = s.Features.Values()
	}
	scaler := FitStandardizer(rows)

	byLabel := make(map[quality.Category][][]float64)
	for i, s := range samples {
		scaled, err := scaler.Transform(rows[i])
		if err != nil {
			return nil, err
		}
		byLabel[s.Label] = append(byLabel[s.Label], scaled)
	}
	if len(byLabel) < 2 {
		return nil, ErrSingleClass
	}

	labels := make([]quality.Category, 0, len(byLabel))
	for _, c := range quality.Categories {
		if _, ok := byLabel[c]; ok {
			labels = append(labels, c)
		}
	}
	if len(labels) != len(byLabel) {
		return nil, errors.New("training samples carry unknown labels")
	}

	m := &NaiveBayes{
		Labels:    labels,
		Priors:    make([]float64, len(labels)),
		Means:     make([][]float64, len(labels)),
		Variances: make([][]float64, len(labels)),
		Scaler:    scaler,
		Samples:   len(samples),
		TrainedAt: time.Now().UTC(),
	}

	maxVar := 0.0
	for li, label := range labels {
		classRows := byLabel[label]
		m.Priors[li] = float64(len(classRows)) / float64(len(samples))
		mean, variance := columnStats(classRows)
		m.Means[li] = mean
		m.Variances[li] = variance
		maxVar = max(maxVar, slices.Max(variance))
	}

	eps := varSmoothing * max(maxVar, 1)
	for li := range m.Variances {
		for i := range m.Variances[li] {
			m.Variances[li][i] += eps
		}
	}

	return m, nil
}

// PredictProba returns the posterior probability of each trained label
func (m *NaiveBayes) PredictProba(features []float64) (map[quality.Category]float64, error) {
	x, err := m.Scaler.Transform(features)
	if err != nil {
		return nil, err
	}

	logPost := make([]float64, len(m.Labels))
	for li := range m.Labels {
		lp := math.Log(m.Priors[li])
		for i, v := range x {
			variance := m.Variances[li][i]
			d := v - m.Means[li][i]
			lp += -0.5*math.Log(2*math.Pi*variance) - d*d/(2*variance)
		}
		logPost[li] = lp
	}

	// log-sum-exp keeps tiny likelihoods from underflowing to zero
	top := slices.Max(logPost)
	sum := 0.0
	for _, lp := range logPost {
		sum += math.Exp(lp - top)
	}

	probs := make(map[quality.Category]float64, len(m.Labels))
	for li, label := range m.Labels {
		p := math.Exp(logPost[li]-top) / sum
		if math.IsNaN(p) {
			return nil, errors.New("prediction produced NaN")
		}
		probs[label] = p
	}
	return probs, nil
}

func columnStats(rows [][]float64) (mean, variance []float64) {
	n := quality.NumFeatures
	mean = make([]float64, n)
	variance = make([]float64, n)
	for _, row := range rows {
		for i, v := range row {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(rows))
	}
	for _, row := range rows {
		for i, v := range row {
			d := v - mean[i]
			variance[i] += d * d
		}
	}
	for i := range variance {
		variance[i] /= float64(len(rows))
	}
	return mean, variance
}
