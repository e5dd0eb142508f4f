package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/smb-finance-ledger/internal/domain/outbox"
	"github.com/smb-finance-ledger/internal/event_processor/service"
	"github.com/smb-finance-ledger/internal/platform/messaging/producers"
)

// LedgerEventHandler projects events from the ledger events topic
type LedgerEventHandler struct {
	projection service.ProjectionService
	producer   producers.DeadLetterPublisher
	logger     *slog.Logger
}

func NewLedgerEventHandler(
	logger *slog.Logger,
	projection service.ProjectionService,
	producer producers.DeadLetterPublisher,
) *LedgerEventHandler {
	return &LedgerEventHandler{
		projection: projection,
		producer:   producer,
		logger:     logger,
	}
}

// HandleMessage returns nil when the offset may be committed
func (h *LedgerEventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event outbox.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return h.deadLetter(ctx, msg, "unmarshal ledger event", err)
	}
	if event.EventID == 0 || event.Type == "" {
		return h.deadLetter(ctx, msg, "invalid ledger event", fmt.Errorf("missing event_id or type"))
	}

	logger := h.logger.With("event_id", event.EventID, "event_type", event.Type)
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	if err := h.projection.Project(ctx, &event); err != nil {
		logger.Error("Failed to project ledger event", "error", err)
		return fmt.Errorf("projecting event %d failed: %w", event.EventID, err)
	}

	logger.Info("Ledger event projected", "aggregate_id", event.AggregateID.String())
	return nil
}

// deadLetter parks a message that can never be projected. If the DLQ
// itself fails the error is returned so the message is retried.
func (h *LedgerEventHandler) deadLetter(ctx context.Context, msg kafka.Message, what string, cause error) error {
	key := string(msg.Key)
	reason := fmt.Sprintf("%s: %s", what, cause.Error())
	h.logger.Error("Unprocessable ledger event", "message_key", key, "offset", msg.Offset, "reason", reason)

	dlqErr := h.producer.PublishToDLQ(ctx, msg, reason)
	if errors.Is(dlqErr, producers.ErrDLQDisabled) {
		h.logger.Warn("DLQ disabled, dropping unprocessable ledger event", "message_key", key)
		return nil
	}
	if dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ", "message_key", key, "dlq_error", dlqErr)
		return fmt.Errorf("%s: %w", what, cause)
	}
	return nil
}
