package model

import "errors"

// Sentinel errors for model operations.
var (
	ErrModelNotFound = errors.New("model not found")
	ErrNoSamples     = errors.New("no training samples")
	ErrSingleClass   = errors.New("training samples must cover at least two labels")
)
