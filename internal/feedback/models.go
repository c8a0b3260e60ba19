// Package feedback stores user ratings of graded candidates. The stored
// ratings, together with synthetic samples, are the classifier's training set.
package feedback

import (
	"time"

	"github.com/shapedtime/releasegrade/internal/quality"
)

// Entry is a single rating submitted for a candidate
type Entry struct {
	ID        int64
	Candidate quality.CandidateRecord
	InfoHash  string
	Rating    quality.Category
	// Prediction at submission time, if one was made
	PredictedScore    *float64
	PredictedCategory quality.Category
	CreatedAt         time.Time
}

// Stats summarises the stored feedback
type Stats struct {
	Total    int64
	ByRating map[quality.Category]int64
}
