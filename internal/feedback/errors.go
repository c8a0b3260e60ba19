package feedback

import "errors"

// Sentinel errors for feedback operations.
var (
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrInvalidRating    = errors.New("rating must be one of excellent, good, acceptable, poor")
)
