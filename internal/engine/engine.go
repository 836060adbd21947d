package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/eal-forecast-service/internal/domain"
	"github.com/couchcryptid/eal-forecast-service/internal/observability"
)

// Engine recomputes per-county loss forecasts for a scenario. The dataset is
// shared read-only; each caller owns its Scenario, so one Engine serves many
// concurrent sessions. Recompute never mutates the scenario or the counties.
type Engine struct {
	predictor domain.Predictor
	manifest  []string
	transform domain.ColorTransform
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	// Baseline losses depend only on the immutable dataset, so they are
	// cached per geo key across recomputations. Correctness does not depend
	// on the cache; uncached counties are predicted on demand.
	mu       sync.Mutex
	baseline map[string]float64
}

// New creates an Engine predicting over the manifest's feature columns.
func New(p domain.Predictor, manifest []string, transform domain.ColorTransform, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		predictor: p,
		manifest:  manifest,
		transform: transform,
		logger:    logger,
		metrics:   metrics,
		baseline:  make(map[string]float64),
	}
}

// CheckReadiness returns nil once the engine has completed at least one
// prediction, or an error describing why the service is not yet ready.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("engine has not completed a prediction yet")
	}
	return nil
}

// WarmBaseline predicts and caches baseline losses for all given counties.
// Called once at startup so the first user request pays for one batch, not two.
func (e *Engine) WarmBaseline(ctx context.Context, counties []domain.County) error {
	if _, err := e.baselineLosses(ctx, counties); err != nil {
		return err
	}
	e.ready.Store(true)
	e.logger.Info("baseline warmed", "counties", len(counties))
	return nil
}

// Recompute produces a fresh ForecastResult for the scenario over the given
// counties. Row order matches input order; an empty county slice yields an
// empty result. Prediction failures propagate with batch context and are
// never retried.
func (e *Engine) Recompute(ctx context.Context, counties []domain.County, scenario *domain.Scenario) (domain.ForecastResult, error) {
	start := time.Now()

	result := domain.ForecastResult{
		Rows:        make([]domain.ForecastRow, 0, len(counties)),
		GeneratedAt: domain.Now(),
		Preset:      scenario.ActivePreset(),
		Multipliers: scenario.Multipliers(),
	}
	if len(counties) == 0 {
		return result, nil
	}

	baseline, err := e.baselineLosses(ctx, counties)
	if err != nil {
		return domain.ForecastResult{}, err
	}

	scaled := make([]domain.FeatureVector, len(counties))
	for i, c := range counties {
		scaled[i] = e.featureRow(c, scenario)
	}

	predicted, err := e.predict(ctx, "scenario", scaled)
	if err != nil {
		return domain.ForecastResult{}, err
	}

	for i, c := range counties {
		p := predicted[i]
		result.Rows = append(result.Rows, domain.ForecastRow{
			GeoKey:        c.GeoKey,
			State:         c.State,
			Name:          c.Name,
			BaselineLoss:  baseline[i],
			PredictedLoss: p,
			Delta:         p - baseline[i],
			ColorValue:    e.transform.Apply(p),
		})
	}

	e.ready.Store(true)
	e.metrics.RecomputesTotal.Inc()
	e.metrics.CountiesInScope.Observe(float64(len(counties)))
	e.metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	e.logger.Debug("recompute complete",
		"counties", len(counties),
		"preset", scenario.ActivePreset(),
		"duration", time.Since(start),
	)
	return result, nil
}

// baselineLosses returns the baseline loss per county, in county order,
// predicting and caching any counties not seen before.
func (e *Engine) baselineLosses(ctx context.Context, counties []domain.County) ([]float64, error) {
	e.mu.Lock()
	out := make([]float64, len(counties))
	var missing []int
	for i, c := range counties {
		if v, ok := e.baseline[c.GeoKey]; ok {
			out[i] = v
			e.metrics.BaselineCache.WithLabelValues("hit").Inc()
			continue
		}
		e.metrics.BaselineCache.WithLabelValues("miss").Inc()
		missing = append(missing, i)
	}
	e.mu.Unlock()

	if len(missing) == 0 {
		return out, nil
	}

	rows := make([]domain.FeatureVector, len(missing))
	for j, i := range missing {
		rows[j] = e.featureRow(counties[i], nil)
	}

	losses, err := e.predict(ctx, "baseline", rows)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	for j, i := range missing {
		out[i] = losses[j]
		e.baseline[counties[i].GeoKey] = losses[j]
	}
	e.mu.Unlock()
	return out, nil
}

// featureRow builds one model input row over the manifest columns, scaled by
// the scenario's multipliers. A nil scenario means baseline (all 1.0).
// Absent or NaN source values are filled with 0.0: missing exposure means "no
// known exposure", not "unknown".
func (e *Engine) featureRow(c domain.County, scenario *domain.Scenario) domain.FeatureVector {
	row := make(domain.FeatureVector, len(e.manifest))
	for _, key := range e.manifest {
		v, ok := c.Features[key]
		if !ok || math.IsNaN(v) {
			v = 0
		}
		if scenario != nil {
			v *= scenario.Multiplier(key)
		}
		row[key] = v
	}
	return row
}

// predict runs one batched model call, wrapping failures with batch context.
func (e *Engine) predict(ctx context.Context, batch string, rows []domain.FeatureVector) ([]float64, error) {
	e.metrics.PredictionBatchSize.Observe(float64(len(rows)))
	losses, err := e.predictor.PredictBatch(ctx, rows)
	if err != nil {
		e.metrics.PredictionErrors.Inc()
		e.logger.Error("prediction failed", "batch", batch, "rows", len(rows), "error", err)
		return nil, &domain.PredictionError{Batch: batch, Rows: len(rows), Err: err}
	}
	if len(losses) != len(rows) {
		e.metrics.PredictionErrors.Inc()
		return nil, &domain.PredictionError{
			Batch: batch,
			Rows:  len(rows),
			Err:   errors.New("predictor returned wrong number of losses"),
		}
	}
	return losses, nil
}
