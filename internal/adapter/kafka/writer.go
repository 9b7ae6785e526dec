package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/location-mapper/internal/config"
	"github.com/couchcryptid/location-mapper/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces placed points to a Kafka topic.
// It implements pipeline.ResultPublisher.
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

// PublishBatch serializes and publishes all placed points of a batch in
// a single WriteMessages call for efficiency.
func (p *Publisher) PublishBatch(ctx context.Context, points []domain.PlacedPoint) error {
	if len(points) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(points))
	for i := range points {
		msg, err := serializeToMessage(points[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a placed point into a Kafka message.
func serializeToMessage(point domain.PlacedPoint) (kafkago.Message, error) {
	data, err := json.Marshal(point)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize placed point: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(point.Name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "provider", Value: []byte(point.Provider)},
			{Key: "cluster_id", Value: []byte(strconv.Itoa(point.ClusterID))},
			{Key: "processed_at", Value: []byte(point.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
