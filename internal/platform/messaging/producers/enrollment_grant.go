package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lms-payment-gateway/internal/config"
	"github.com/segmentio/kafka-go"
)

// EnrollmentGrantProducer publishes enrollment grant requests keyed by payment reference.
// Writes are synchronous so the outbox relay only marks a row PROCESSED after the broker acked it.
type EnrollmentGrantProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

func NewEnrollmentGrantProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EnrollmentGrantProducer, error) {
	if cfg.EnrollmentTopic == "" {
		return nil, fmt.Errorf("kafka enrollment topic is not configured")
	}

	if err := dialAndEnsureTopic(cfg.Brokers, cfg.EnrollmentTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure enrollment topic %s exists: %w", cfg.EnrollmentTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EnrollmentTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &EnrollmentGrantProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EnrollmentTopic,
	}, nil
}

func (p *EnrollmentGrantProducer) Publish(ctx context.Context, key string, value interface{}) error {
	var payload []byte
	switch v := value.(type) {
	case json.RawMessage:
		payload = v
	case []byte:
		payload = v
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal enrollment grant: %w", err)
		}
		payload = encoded
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish enrollment grant",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish enrollment grant to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published enrollment grant", "topic", p.topic, "key", key)
	return nil
}

func (p *EnrollmentGrantProducer) Close() error {
	p.logger.Info("Closing enrollment grant producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
