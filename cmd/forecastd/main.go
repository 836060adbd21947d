package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/eal-forecast-service/internal/adapter/dataset"
	"github.com/couchcryptid/eal-forecast-service/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/eal-forecast-service/internal/adapter/kafka"
	"github.com/couchcryptid/eal-forecast-service/internal/adapter/model"
	"github.com/couchcryptid/eal-forecast-service/internal/config"
	"github.com/couchcryptid/eal-forecast-service/internal/domain"
	"github.com/couchcryptid/eal-forecast-service/internal/engine"
	"github.com/couchcryptid/eal-forecast-service/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	table, err := dataset.Load(cfg.DatasetPath, cfg.ManifestPath, logger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset loaded",
		"counties", len(table.Counties), "features", len(table.Manifest))

	transform, err := domain.ParseColorTransform(cfg.ColorTransform)
	if err != nil {
		logger.Error("invalid color transform", "error", err)
		os.Exit(1)
	}

	// Predictor selection: a remote model service when MODEL_URL is set,
	// otherwise local linear weights.
	var predictor domain.Predictor
	if cfg.ModelURL != "" {
		client := model.NewClient(cfg.ModelURL, table.Manifest, cfg.ModelTimeout, logger)
		predictor = client
		if cfg.ModelSerialize {
			predictor = model.NewSerial(client)
		}
		logger.Info("using remote model service",
			"url", cfg.ModelURL, "serialize", cfg.ModelSerialize)
	} else {
		linear, err := model.LoadLinear(cfg.ModelWeightsPath)
		if err != nil {
			logger.Error("failed to load model weights", "error", err)
			os.Exit(1)
		}
		predictor = linear
		logger.Info("using local linear model", "weights", cfg.ModelWeightsPath)
	}

	eng := engine.New(predictor, table.Manifest, transform, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eng.WarmBaseline(ctx, table.Counties); err != nil {
		logger.Error("baseline warmup failed", "error", err)
		os.Exit(1)
	}

	// Summary publishing is feature-flagged via KAFKA_ENABLED.
	var publisher httpapi.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		metrics.PublishEnabled.Set(1)
		logger.Info("forecast publishing enabled",
			"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("forecast publishing disabled")
	}

	srv := httpapi.NewServer(httpapi.Options{
		Addr:          cfg.HTTPAddr,
		Engine:        eng,
		Table:         table,
		Ready:         eng,
		Publisher:     publisher,
		Logger:        logger,
		Metrics:       metrics,
		MultiplierMax: cfg.MultiplierMax,
		TopNDefault:   cfg.TopNDefault,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
