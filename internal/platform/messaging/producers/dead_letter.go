package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/smb-finance-ledger/internal/config"
)

// ErrDLQDisabled is returned when no DLQ topic is configured
var ErrDLQDisabled = errors.New("dead letter queue is disabled")

const (
	headerDLQReason      = "dlq-reason"
	headerDLQSourceTopic = "dlq-source-topic"
	headerDLQSourceOff   = "dlq-source-offset"
)

// DLQProducer parks ledger events the audit projection can never apply
type DLQProducer struct {
	logger   *slog.Logger
	writer   KafkaWriter
	dlqTopic string
	now      func() time.Time
}

// deadLetter is the DLQ record. Source coordinates let an operator find
// and replay the original message.
type deadLetter struct {
	SourceTopic     string    `json:"source_topic"`
	SourcePartition int       `json:"source_partition"`
	SourceOffset    int64     `json:"source_offset"`
	Key             string    `json:"key"`
	Value           string    `json:"value"`
	Reason          string    `json:"reason"`
	FailedAt        time.Time `json:"failed_at"`
}

// NewDLQProducer returns a nil producer if cfg.DLQTopic is empty.
// All methods are safe to call on a nil *DLQProducer.
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic is not configured, dead letters will be dropped")
		return nil, nil
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for dlq producer: %w", err)
	}
	defer conn.Close()

	if err := createKafkaTopicIfNotExists(conn, cfg.DLQTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure DLQ topic %s exists: %w", cfg.DLQTopic, err)
	}

	return &DLQProducer{
		logger: logger,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers),
			Topic:        cfg.DLQTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: cfg.MaxWait,
		},
		dlqTopic: cfg.DLQTopic,
		now:      time.Now,
	}, nil
}

// PublishToDLQ writes the original message with its headers plus the
// failure reason and source coordinates.
func (p *DLQProducer) PublishToDLQ(ctx context.Context, original kafka.Message, reason string) error {
	if p == nil || p.writer == nil {
		return ErrDLQDisabled
	}

	value, err := json.Marshal(deadLetter{
		SourceTopic:     original.Topic,
		SourcePartition: original.Partition,
		SourceOffset:    original.Offset,
		Key:             string(original.Key),
		Value:           string(original.Value),
		Reason:          reason,
		FailedAt:        p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter: %w", err)
	}

	headers := make([]kafka.Header, 0, len(original.Headers)+3)
	headers = append(headers, original.Headers...)
	headers = append(headers,
		kafka.Header{Key: headerDLQReason, Value: []byte(reason)},
		kafka.Header{Key: headerDLQSourceTopic, Value: []byte(original.Topic)},
		kafka.Header{Key: headerDLQSourceOff, Value: []byte(strconv.FormatInt(original.Offset, 10))},
	)

	msg := kafka.Message{Key: original.Key, Value: value, Headers: headers}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message to DLQ",
			"topic", p.dlqTopic,
			"key", string(original.Key),
			"error", err,
		)
		return fmt.Errorf("failed to publish message to DLQ %s: %w", p.dlqTopic, err)
	}

	p.logger.Warn("Ledger event dead-lettered",
		"topic", p.dlqTopic,
		"source_topic", original.Topic,
		"source_offset", original.Offset,
		"reason", reason,
	)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close dlq kafka writer for topic %s: %w", p.dlqTopic, err)
	}
	return nil
}
