package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smb-finance-ledger/internal/domain/audit"
	"github.com/smb-finance-ledger/internal/domain/outbox"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// AuditProjector writes every ledger event into the audit trail
type AuditProjector struct {
	auditRepo audit.Repository
	clock     shared.Clock
	logger    *slog.Logger
}

func NewAuditProjector(auditRepo audit.Repository, clock shared.Clock, logger *slog.Logger) *AuditProjector {
	return &AuditProjector{
		auditRepo: auditRepo,
		clock:     clock,
		logger:    logger,
	}
}

func (p *AuditProjector) Project(ctx context.Context, event *outbox.Event) error {
	logger := p.logger.With("event_id", event.EventID, "event_type", event.Type)
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	record := &audit.Record{
		EventID:       event.EventID,
		EventType:     string(event.Type),
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		OwnerID:       event.OwnerID,
		ActorID:       event.ActorID,
		CorrelationID: event.CorrelationID,
		Payload:       string(event.Payload),
		OccurredAt:    event.OccurredAt,
		ProjectedAt:   p.clock.Now(),
	}

	if err := p.auditRepo.Upsert(ctx, record); err != nil {
		logger.Error("Failed to project ledger event into audit trail", "error", err)
		return fmt.Errorf("failed to project event %d: %w", event.EventID, err)
	}

	logger.Debug("Ledger event projected", "aggregate_id", event.AggregateID.String())
	return nil
}
