package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smb-finance-ledger/internal/domain/outbox"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/platform/messaging/producers"
)

// EventRelay moves one outbox message onto the events topic
type EventRelay interface {
	Relay(ctx context.Context, message *outbox.Message) error
}

// EventRelayImpl implements EventRelay
type EventRelayImpl struct {
	outboxRepo outbox.Repository
	publisher  producers.EventPublisher
	logger     *slog.Logger
}

func NewEventRelay(
	outboxRepo outbox.Repository,
	publisher producers.EventPublisher,
	logger *slog.Logger,
) EventRelay {
	return &EventRelayImpl{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// Relay publishes the message and marks it PROCESSED. A message that was
// published but not marked is published again on the next poll, which
// the projector tolerates because it is keyed on the event ID.
func (r *EventRelayImpl) Relay(ctx context.Context, message *outbox.Message) error {
	logger := r.logger.With("outbox_id", message.ID, "event_type", message.EventType)
	if message.CorrelationID != "" {
		logger = logger.With("correlation_id", message.CorrelationID)
	}

	if err := r.publisher.PublishEvent(ctx, message.Event()); err != nil {
		return fmt.Errorf("failed to publish outbox message %d: %w", message.ID, err)
	}

	if err := r.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("event %d published, but failed to mark outbox as PROCESSED: %w", message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "aggregate_id", message.AggregateID.String())
	return nil
}
