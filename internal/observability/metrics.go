package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast service.
type Metrics struct {
	RecomputesTotal   prometheus.Counter
	RecomputeDuration prometheus.Histogram
	CountiesInScope   prometheus.Histogram
	PredictionErrors  prometheus.Counter
	FilterFallbacks   prometheus.Counter

	// Prediction adapter metrics.
	PredictionBatchSize prometheus.Histogram
	BaselineCache       *prometheus.CounterVec // labels: result={hit,miss}

	// Forecast publishing metrics.
	ForecastsPublished prometheus.Counter
	PublishErrors      prometheus.Counter
	PublishEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecomputesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eal_forecast",
			Name:      "recomputes_total",
			Help:      "Total scenario recomputations performed.",
		}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eal_forecast",
			Name:      "recompute_duration_seconds",
			Help:      "Duration of a complete scenario recomputation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		CountiesInScope: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eal_forecast",
			Name:      "counties_in_scope",
			Help:      "Number of counties per recomputation after geographic filtering.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2000, 3500},
		}),
		PredictionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eal_forecast",
			Name:      "prediction_errors_total",
			Help:      "Total failed model prediction batches.",
		}),
		FilterFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eal_forecast",
			Name:      "filter_fallbacks_total",
			Help:      "Total geographic selections that matched nothing and fell back to all counties.",
		}),
		PredictionBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eal_forecast",
			Name:      "prediction_batch_size",
			Help:      "Number of feature rows per model prediction call.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2000, 3500, 7000},
		}),
		BaselineCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eal_forecast",
			Name:      "baseline_cache_total",
			Help:      "Baseline prediction cache lookups by result.",
		}, []string{"result"}),
		ForecastsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eal_forecast",
			Name:      "forecasts_published_total",
			Help:      "Total forecast summaries published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eal_forecast",
			Name:      "publish_errors_total",
			Help:      "Total failed forecast summary publishes.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eal_forecast",
			Name:      "publish_enabled",
			Help:      "1 when forecast publishing is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RecomputesTotal,
		m.RecomputeDuration,
		m.CountiesInScope,
		m.PredictionErrors,
		m.FilterFallbacks,
		m.PredictionBatchSize,
		m.BaselineCache,
		m.ForecastsPublished,
		m.PublishErrors,
		m.PublishEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecomputesTotal:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "eal_forecast", Name: "recomputes_total"}),
		RecomputeDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "eal_forecast", Name: "recompute_duration_seconds"}),
		CountiesInScope:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "eal_forecast", Name: "counties_in_scope"}),
		PredictionErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "eal_forecast", Name: "prediction_errors_total"}),
		FilterFallbacks:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "eal_forecast", Name: "filter_fallbacks_total"}),
		PredictionBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "eal_forecast", Name: "prediction_batch_size"}),
		BaselineCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "eal_forecast", Name: "baseline_cache_total"}, []string{"result"}),
		ForecastsPublished:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "eal_forecast", Name: "forecasts_published_total"}),
		PublishErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "eal_forecast", Name: "publish_errors_total"}),
		PublishEnabled:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "eal_forecast", Name: "publish_enabled"}),
	}
}
