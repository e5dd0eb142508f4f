package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
	"github.com/smb-finance-ledger/internal/domain/outbox"
)

// EventPublisher publishes outbox events to the ledger events topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, event outbox.Event) error
	Close() error
}

// DeadLetterPublisher parks messages that can never be processed
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, original kafka.Message, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
