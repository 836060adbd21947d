package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/eal-forecast-service/internal/domain"
)

// Client implements domain.Predictor against a model server exposing a
// batch /predict endpoint (the trained regression model runs out of process).
type Client struct {
	httpClient *http.Client
	baseURL    string
	columns    []string
	logger     *slog.Logger
}

// NewClient creates a model server client. columns fixes the feature order
// the model was trained with; every request sends the full matrix in that order.
func NewClient(baseURL string, columns []string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		columns: columns,
		logger:  logger,
	}
}

// PredictBatch sends the whole feature matrix in one request and returns one
// loss estimate per row, in input order.
func (c *Client) PredictBatch(ctx context.Context, rows []domain.FeatureVector) ([]float64, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	matrix, err := buildMatrix(rows, c.columns)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(predictRequest{Columns: c.columns, Rows: matrix})
	if err != nil {
		return nil, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("model server error: status %d: %s", resp.StatusCode, respBody)
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}

	if len(pr.Predictions) != len(rows) {
		return nil, fmt.Errorf("model server returned %d predictions for %d rows", len(pr.Predictions), len(rows))
	}
	return pr.Predictions, nil
}

// Health checks model server connectivity.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model health check returned status %d", resp.StatusCode)
	}
	return nil
}

// buildMatrix orders each feature row by columns. Every hazard feature key
// must be present in every row; the engine zero-fills before predicting, so
// a missing key here is a dataset/taxonomy mismatch.
func buildMatrix(rows []domain.FeatureVector, columns []string) ([][]float64, error) {
	matrix := make([][]float64, len(rows))
	for i, row := range rows {
		vec := make([]float64, len(columns))
		for j, key := range columns {
			v, ok := row[key]
			if !ok {
				return nil, &domain.MissingFeatureError{Key: key, Row: i}
			}
			vec[j] = v
		}
		matrix[i] = vec
	}
	return matrix, nil
}

// Model server wire types.

type predictRequest struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}
