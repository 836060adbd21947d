package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/eal-forecast-service/internal/config"
	"github.com/couchcryptid/eal-forecast-service/internal/domain"
	"github.com/couchcryptid/eal-forecast-service/internal/engine"
)

// Publisher produces forecast summaries to a Kafka topic.
// It implements httpapi.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishSummary serializes and publishes one forecast summary to the sink
// topic. Full per-county rows stay out of the message; downstream consumers
// only track aggregate trends.
func (p *Publisher) PublishSummary(ctx context.Context, result domain.ForecastResult, summary engine.Summary) error {
	msg, err := serializeSummary(result, summary)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// summaryEnvelope is the wire shape written to the sink topic.
type summaryEnvelope struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Preset      string             `json:"preset,omitempty"`
	Multipliers map[string]float64 `json:"multipliers,omitempty"`
	Summary     engine.Summary     `json:"summary"`
}

// serializeSummary marshals a forecast summary into a Kafka message. The key
// is the generation timestamp so compacted topics keep the latest forecast.
func serializeSummary(result domain.ForecastResult, summary engine.Summary) (kafkago.Message, error) {
	env := summaryEnvelope{
		GeneratedAt: result.GeneratedAt,
		Preset:      result.Preset,
		Multipliers: result.Multipliers,
		Summary:     summary,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast summary: %w", err)
	}
	key := result.GeneratedAt.UTC().Format(time.RFC3339)
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "preset", Value: []byte(result.Preset)},
			{Key: "generated_at", Value: []byte(key)},
		},
	}, nil
}
