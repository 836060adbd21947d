package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset is returned when a requested preset name is not registered.
// The scenario is left unchanged.
var ErrUnknownPreset = errors.New("unknown preset")

// MissingFeatureError indicates a feature row lacks a value for a required
// feature key after zero-fill, i.e. a dataset/taxonomy mismatch.
type MissingFeatureError struct {
	Key string
	Row int
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("row %d: missing required feature %q", e.Row, e.Key)
}

// PredictionError wraps a model invocation failure with batch context.
// Prediction failures are assumed deterministic for a given input, so they
// are surfaced immediately and never retried.
type PredictionError struct {
	Batch string // "baseline" or "scenario"
	Rows  int
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("%s prediction over %d rows: %v", e.Batch, e.Rows, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }
