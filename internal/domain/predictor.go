package domain

import "context"

// FeatureVector is one model input row: feature key -> exposure value.
type FeatureVector map[string]float64

// Predictor wraps the trained regression model. Implementations are
// stateless per call and must be safe for concurrent use; if the underlying
// model is not reentrant, the adapter serializes access itself.
type Predictor interface {
	// PredictBatch returns one loss estimate per input row, same order and
	// length as rows. The whole matrix goes in one call; per-row calls would
	// be correct but unacceptably slow. A row lacking a required hazard
	// feature key fails with MissingFeatureError.
	PredictBatch(ctx context.Context, rows []FeatureVector) ([]float64, error)
}
