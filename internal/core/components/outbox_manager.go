package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/domain/outbox"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Record writes the event through tx so it commits together with the mutation
func (m *OutboxManagerImpl) Record(
	ctx context.Context,
	tx pgx.Tx,
	caller shared.Caller,
	eventType shared.EventType,
	aggregateType string,
	aggregateID uuid.UUID,
	payload any,
) error {
	logger := m.logger
	correlationID := shared.CorrelationIDFrom(ctx)
	if correlationID != "" {
		logger = m.logger.With("correlation_id", correlationID)
	}

	message, err := outbox.NewMessage(eventType, aggregateType, aggregateID, caller, payload)
	if err != nil {
		logger.Error("Failed to create new outbox message (marshal payload)",
			"event_type", eventType,
			"aggregate_id", aggregateID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for %s %s: %w", aggregateType, aggregateID.String(), err)
	}
	message.CorrelationID = correlationID

	if err = m.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		logger.Error("Failed to create outbox message",
			"event_type", eventType,
			"aggregate_id", aggregateID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for %s %s: %w", aggregateType, aggregateID.String(), err)
	}

	logger.Info("Outbox message created successfully",
		"event_type", eventType,
		"aggregate_id", aggregateID.String(),
		"outbox_id", message.ID,
	)
	return nil
}
