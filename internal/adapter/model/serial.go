package model

import (
	"context"
	"sync"

	"github.com/couchcryptid/eal-forecast-service/internal/domain"
)

// Serial wraps a Predictor that is not safe for concurrent use (some model
// runtimes hold per-call scratch state) and serializes access with a mutex.
// The engine always assumes its Predictor is reentrant, so non-reentrant
// models must be wrapped here before wiring.
type Serial struct {
	inner domain.Predictor
	mu    sync.Mutex
}

// NewSerial creates a serializing decorator around a predictor.
func NewSerial(inner domain.Predictor) *Serial {
	return &Serial{inner: inner}
}

func (s *Serial) PredictBatch(ctx context.Context, rows []domain.FeatureVector) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.PredictBatch(ctx, rows)
}
