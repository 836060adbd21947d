package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/eal-forecast-service/internal/domain"
)

// Linear is a weights-file linear model used for local development and the
// mock fixtures: loss = intercept + sum(weight[k] * feature[k]). It stands in
// when no model server is configured; production deployments point MODEL_URL
// at the real regression model.
type Linear struct {
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

// LoadLinear reads linear model weights from a JSON file.
func LoadLinear(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model weights: %w", err)
	}
	var m Linear
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model weights: %w", err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("model weights %s: no weights defined", path)
	}
	return &m, nil
}

// PredictBatch computes the weighted sum per row. Every weighted feature key
// must be present in every row.
func (m *Linear) PredictBatch(_ context.Context, rows []domain.FeatureVector) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		loss := m.Intercept
		for key, w := range m.Weights {
			v, ok := row[key]
			if !ok {
				return nil, &domain.MissingFeatureError{Key: key, Row: i}
			}
			loss += w * v
		}
		out[i] = loss
	}
	return out, nil
}
