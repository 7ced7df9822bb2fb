package model

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable means no trained model artifact exists yet.
	// Callers should treat this as retryable after a training run.
	ErrModelUnavailable = errors.New("no trained model available")

	// ErrNoBrandData means the eligible brand population is empty.
	ErrNoBrandData = errors.New("no brand data available")

	// ErrNotFound means a requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}
