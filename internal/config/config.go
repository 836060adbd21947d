package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset settings.
	DatasetPath  string
	ManifestPath string

	// Scenario engine settings.
	MultiplierMax  float64
	ColorTransform string
	TopNDefault    int

	// Model server settings. When ModelURL is empty the service falls back
	// to the local linear model at ModelWeightsPath.
	ModelURL         string
	ModelTimeout     time.Duration
	ModelSerialize   bool
	ModelWeightsPath string

	// Forecast publishing configuration.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	modelTimeout, err := parseDuration("MODEL_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	multiplierMax, err := parseMultiplierMax()
	if err != nil {
		return nil, err
	}

	topN, err := parsePositiveInt("TOP_N_DEFAULT", 10)
	if err != nil {
		return nil, err
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetPath:  envOrDefault("DATASET_PATH", "data/county_hazard_dataset.csv"),
		ManifestPath: envOrDefault("MANIFEST_PATH", "data/feature_columns.json"),

		MultiplierMax:  multiplierMax,
		ColorTransform: envOrDefault("COLOR_TRANSFORM", "sqrt"),
		TopNDefault:    topN,

		ModelURL:         os.Getenv("MODEL_URL"),
		ModelTimeout:     modelTimeout,
		ModelSerialize:   os.Getenv("MODEL_SERIALIZE") == "true",
		ModelWeightsPath: envOrDefault("MODEL_WEIGHTS_PATH", "data/model_weights.json"),

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "forecast-summaries"),
	}

	switch cfg.ColorTransform {
	case "identity", "sqrt", "log1p":
	default:
		return nil, fmt.Errorf("invalid COLOR_TRANSFORM %q", cfg.ColorTransform)
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH is required")
	}
	if cfg.ManifestPath == "" {
		return nil, errors.New("MANIFEST_PATH is required")
	}
	if cfg.ModelURL == "" && cfg.ModelWeightsPath == "" {
		return nil, errors.New("one of MODEL_URL or MODEL_WEIGHTS_PATH is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

// parseMultiplierMax reads the slider bound. Older dashboard variants used
// 3.0; the canonical default is 5.0 and deployments may override it.
func parseMultiplierMax() (float64, error) {
	s := os.Getenv("MULTIPLIER_MAX")
	if s == "" {
		return 5.0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid MULTIPLIER_MAX: %q", s)
	}
	return v, nil
}

func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
