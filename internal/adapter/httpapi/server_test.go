package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/eal-forecast-service/internal/adapter/httpapi"
	"github.com/couchcryptid/eal-forecast-service/internal/domain"
	"github.com/couchcryptid/eal-forecast-service/internal/engine"
	"github.com/couchcryptid/eal-forecast-service/internal/observability"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

// sumPredictor predicts the plain sum of all feature values.
type sumPredictor struct{}

func (sumPredictor) PredictBatch(_ context.Context, rows []domain.FeatureVector) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		for _, v := range row {
			out[i] += v
		}
	}
	return out, nil
}

type recordingPublisher struct {
	summaries []engine.Summary
	err       error
}

func (p *recordingPublisher) PublishSummary(_ context.Context, _ domain.ForecastResult, s engine.Summary) error {
	if p.err != nil {
		return p.err
	}
	p.summaries = append(p.summaries, s)
	return nil
}

func testTable() domain.Table {
	return domain.Table{
		Manifest: []string{"HRCN_EALT", "WFIR_EALT"},
		Counties: []domain.County{
			{GeoKey: "48001", Region: "South", State: "TX", Name: "Anderson", Features: map[string]float64{"HRCN_EALT": 100, "WFIR_EALT": 10}},
			{GeoKey: "06037", Region: "West", State: "CA", Name: "Los Angeles", Features: map[string]float64{"HRCN_EALT": 200, "WFIR_EALT": 50}},
		},
	}
}

func newTestServer(readyErr error, publisher httpapi.Publisher) *httpapi.Server {
	logger := slog.New(slog.DiscardHandler)
	metrics := observability.NewMetricsForTesting()
	table := testTable()
	eng := engine.New(sumPredictor{}, table.Manifest, domain.TransformIdentity, logger, metrics)

	return httpapi.NewServer(httpapi.Options{
		Addr:          ":0",
		Engine:        eng,
		Table:         table,
		Ready:         &mockReadiness{err: readyErr},
		Publisher:     publisher,
		Logger:        logger,
		Metrics:       metrics,
		MultiplierMax: 5.0,
		TopNDefault:   10,
	})
}

func doJSON(t *testing.T, srv *httpapi.Server, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	srv.ServeHTTP(rec, req)

	parsed := map[string]json.RawMessage{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("baseline not warmed"), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "baseline not warmed", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestHazardsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec, body := doJSON(t, srv, http.MethodGet, "/v1/hazards", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var hazards []domain.HazardDefinition
	require.NoError(t, json.Unmarshal(body["hazards"], &hazards))
	assert.Len(t, hazards, 18)
}

func TestPresetsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec, _ := doJSON(t, srv, http.MethodGet, "/v1/presets", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wildfire-surge")
	assert.Contains(t, rec.Body.String(), "WFIR_EALT")
}

func TestForecastEndpoint(t *testing.T) {
	t.Run("identity scenario", func(t *testing.T) {
		srv := newTestServer(nil, nil)
		rec, body := doJSON(t, srv, http.MethodPost, "/v1/forecast", `{"include_rows": true}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var summary engine.Summary
		require.NoError(t, json.Unmarshal(body["summary"], &summary))
		assert.Equal(t, 2, summary.CountyCount)
		assert.Equal(t, 360.0, summary.TotalPredicted)
		assert.Equal(t, 180.0, summary.MeanPredicted)

		var rows []domain.ForecastRow
		require.NoError(t, json.Unmarshal(body["rows"], &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, 0.0, rows[0].Delta)
		assert.Equal(t, 0.0, rows[1].Delta)
	})

	t.Run("multiplier scenario with ranking", func(t *testing.T) {
		srv := newTestServer(nil, nil)
		rec, body := doJSON(t, srv, http.MethodPost, "/v1/forecast",
			`{"multipliers": {"HRCN_EALT": 2.0}, "top_n": 1, "sort_key": "delta"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var top []domain.ForecastRow
		require.NoError(t, json.Unmarshal(body["top"], &top))
		require.Len(t, top, 1)
		assert.Equal(t, "06037", top[0].GeoKey)
		assert.Equal(t, 200.0, top[0].Delta)
	})

	t.Run("rows omitted by default", func(t *testing.T) {
		srv := newTestServer(nil, nil)
		rec, body := doJSON(t, srv, http.MethodPost, "/v1/forecast", `{}`)

		require.Equal(t, http.StatusOK, rec.Code)
		_, hasRows := body["rows"]
		assert.False(t, hasRows)
	})

	t.Run("preset", func(t *testing.T) {
		srv := newTestServer(nil, nil)
		rec, body := doJSON(t, srv, http.MethodPost, "/v1/forecast", `{"preset": "wildfire-surge"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var preset string
		require.NoError(t, json.Unmarshal(body["preset"], &preset))
		assert.Equal(t, "wildfire-surge", preset)

		var multipliers map[string]float64
		require.NoError(t, json.Unmarshal(body["multipliers"], &multipliers))
		assert.Equal(t, 3.0, multipliers["WFIR_EALT"])
	})

	t.Run("unknown preset is a 400", func(t *testing.T) {
		srv := newTestServer(nil, nil)
		rec, body := doJSON(t, srv, http.MethodPost, "/v1/forecast", `{"preset": "category-six"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, string(body["error"]), "unknown preset")
	})

	t.Run("unknown sort key is a 400", func(t *testing.T) {
		srv := newTestServer(nil, nil)
		rec, _ := doJSON(t, srv, http.MethodPost, "/v1/forecast", `{"sort_key": "color_value"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body is a 400", func(t *testing.T) {
		srv := newTestServer(nil, nil)
		rec, _ := doJSON(t, srv, http.MethodPost, "/v1/forecast", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("disjoint state selection falls back with notice", func(t *testing.T) {
		srv := newTestServer(nil, nil)
		rec, body := doJSON(t, srv, http.MethodPost, "/v1/forecast", `{"states": ["HI"]}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var fellBack bool
		require.NoError(t, json.Unmarshal(body["fell_back"], &fellBack))
		assert.True(t, fellBack)

		var summary engine.Summary
		require.NoError(t, json.Unmarshal(body["summary"], &summary))
		assert.Equal(t, 2, summary.CountyCount)
	})

	t.Run("state selection narrows scope", func(t *testing.T) {
		srv := newTestServer(nil, nil)
		rec, body := doJSON(t, srv, http.MethodPost, "/v1/forecast", `{"states": ["TX"], "include_rows": true}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var rows []domain.ForecastRow
		require.NoError(t, json.Unmarshal(body["rows"], &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "48001", rows[0].GeoKey)
	})

	t.Run("publishes summary when a publisher is wired", func(t *testing.T) {
		pub := &recordingPublisher{}
		srv := newTestServer(nil, pub)
		rec, _ := doJSON(t, srv, http.MethodPost, "/v1/forecast", `{}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, pub.summaries, 1)
		assert.Equal(t, 2, pub.summaries[0].CountyCount)
	})

	t.Run("publisher failure does not fail the request", func(t *testing.T) {
		pub := &recordingPublisher{err: fmt.Errorf("broker down")}
		srv := newTestServer(nil, pub)
		rec, _ := doJSON(t, srv, http.MethodPost, "/v1/forecast", `{}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
