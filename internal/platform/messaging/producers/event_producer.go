package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/smb-finance-ledger/internal/config"
	"github.com/smb-finance-ledger/internal/domain/outbox"
)

const (
	headerEventType     = "event-type"
	headerCorrelationID = "correlation-id"
)

type EventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewEventProducer ensures the events topic exists and returns a synchronous
// producer. Messages are keyed by aggregate so one aggregate's events keep
// their order within a partition.
func NewEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EventProducer, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("kafka events topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.EventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure events topic %s exists: %w", cfg.EventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &EventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EventsTopic,
	}, nil
}

// PublishEvent blocks until the broker acknowledged the event. The outbox
// row is only marked processed after this returns nil.
func (p *EventProducer) PublishEvent(ctx context.Context, event outbox.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %d: %w", event.EventID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.AggregateID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event.Type)},
			{Key: headerCorrelationID, Value: []byte(event.CorrelationID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish ledger event",
			"topic", p.topic,
			"event_id", event.EventID,
			"event_type", event.Type,
			"error", err,
		)
		return fmt.Errorf("failed to publish event %d to %s: %w", event.EventID, p.topic, err)
	}

	p.logger.Debug("Published ledger event",
		"topic", p.topic,
		"event_id", event.EventID,
		"event_type", event.Type,
		"aggregate_id", event.AggregateID.String(),
	)
	return nil
}

func (p *EventProducer) Close() error {
	p.logger.Info("Closing ledger event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
