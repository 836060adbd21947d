package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/eal-forecast-service/internal/domain"
	"github.com/couchcryptid/eal-forecast-service/internal/engine"
	"github.com/couchcryptid/eal-forecast-service/internal/observability"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Publisher pushes a completed forecast summary to downstream consumers.
// A nil Publisher disables publishing.
type Publisher interface {
	PublishSummary(ctx context.Context, result domain.ForecastResult, summary engine.Summary) error
}

// Server exposes the forecast API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	table      domain.Table
	publisher  Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics

	multiplierMax float64
	topNDefault   int
}

// Options configures the forecast API surface.
type Options struct {
	Addr          string
	Engine        *engine.Engine
	Table         domain.Table
	Ready         ReadinessChecker
	Publisher     Publisher
	Logger        *slog.Logger
	Metrics       *observability.Metrics
	MultiplierMax float64
	TopNDefault   int
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine:        opts.Engine,
		table:         opts.Table,
		publisher:     opts.Publisher,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		multiplierMax: opts.MultiplierMax,
		topNDefault:   opts.TopNDefault,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(opts.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/hazards", s.handleHazards)
	mux.HandleFunc("GET /v1/presets", s.handlePresets)
	mux.HandleFunc("POST /v1/forecast", s.handleForecast)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleHazards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, hazardsResponse{Hazards: domain.Hazards()})
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	names := domain.PresetNames()
	out := make([]presetInfo, 0, len(names))
	for _, name := range names {
		m, err := domain.PresetMultipliers(name)
		if err != nil {
			continue
		}
		out = append(out, presetInfo{Name: name, Multipliers: m})
	}
	writeJSON(w, http.StatusOK, presetsResponse{Presets: out})
}

// handleForecast runs one full recomputation. Each request carries its own
// scenario, so sessions never share mutable state; the dashboard UI re-posts
// the whole slider state on every interaction.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	scenario, err := s.buildScenario(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sortKey := engine.SortPredictedLoss
	if req.SortKey != "" {
		if sortKey, err = engine.ParseSortKey(req.SortKey); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	counties, fellBack := engine.Scope(s.table.Counties, req.Region, req.States)
	if fellBack {
		s.metrics.FilterFallbacks.Inc()
		s.logger.Debug("geographic selection matched nothing, showing all counties",
			"region", req.Region, "states", req.States)
	}

	result, err := s.engine.Recompute(r.Context(), counties, scenario)
	if err != nil {
		s.logger.Error("recompute failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	summary := engine.Summarize(result)

	n := req.TopN
	if n <= 0 {
		n = s.topNDefault
	}
	top := engine.TopN(result, n, sortKey, true)

	if s.publisher != nil {
		if err := s.publisher.PublishSummary(r.Context(), result, summary); err != nil {
			// Publishing is best-effort telemetry; the forecast response
			// must not fail because a broker is down.
			s.metrics.PublishErrors.Inc()
			s.logger.Warn("publish forecast summary failed", "error", err)
		} else {
			s.metrics.ForecastsPublished.Inc()
		}
	}

	resp := forecastResponse{
		Summary:     summary,
		Top:         top,
		FellBack:    fellBack,
		GeneratedAt: result.GeneratedAt,
		Preset:      result.Preset,
		Multipliers: result.Multipliers,
	}
	if req.IncludeRows {
		resp.Rows = result.Rows
	}
	writeJSON(w, http.StatusOK, resp)
}

// buildScenario constructs the request's scenario: preset first (if any),
// then fine-grained multiplier edits on top. Unknown feature keys are
// ignored by the scenario itself; they are logged here so a misspelled key
// is at least visible at debug level.
func (s *Server) buildScenario(req forecastRequest) (*domain.Scenario, error) {
	scenario := domain.NewScenario(s.multiplierMax)
	if req.Preset != "" {
		if err := scenario.ApplyPreset(req.Preset); err != nil {
			return nil, err
		}
	}
	for key, v := range req.Multipliers {
		if !domain.IsHazardKey(key) {
			s.logger.Debug("ignoring unknown feature key in scenario", "key", key)
			continue
		}
		scenario.SetMultiplier(key, v)
	}
	return scenario, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// API wire types.

type hazardsResponse struct {
	Hazards []domain.HazardDefinition `json:"hazards"`
}

type presetInfo struct {
	Name        string             `json:"name"`
	Multipliers map[string]float64 `json:"multipliers"`
}

type presetsResponse struct {
	Presets []presetInfo `json:"presets"`
}

type forecastRequest struct {
	Preset      string             `json:"preset,omitempty"`
	Multipliers map[string]float64 `json:"multipliers,omitempty"`
	Region      string             `json:"region,omitempty"`
	States      []string           `json:"states,omitempty"`
	TopN        int                `json:"top_n,omitempty"`
	SortKey     string             `json:"sort_key,omitempty"`
	IncludeRows bool               `json:"include_rows,omitempty"`
}

type forecastResponse struct {
	Summary     engine.Summary       `json:"summary"`
	Top         []domain.ForecastRow `json:"top"`
	Rows        []domain.ForecastRow `json:"rows,omitempty"`
	FellBack    bool                 `json:"fell_back"`
	GeneratedAt time.Time            `json:"generated_at"`
	Preset      string               `json:"preset,omitempty"`
	Multipliers map[string]float64   `json:"multipliers"`
}
