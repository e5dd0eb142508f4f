package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/domain/audit"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

type AuditServiceImpl struct {
	auditRepo audit.Repository
	logger    *slog.Logger
}

func NewAuditService(auditRepo audit.Repository, logger *slog.Logger) AuditService {
	return &AuditServiceImpl{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// History lists the projected events of one aggregate, newest first. The
// tenant filter is part of the query so other tenants' history reads as empty.
func (s *AuditServiceImpl) History(ctx context.Context, caller shared.Caller, aggregateID uuid.UUID, limit, offset int) ([]*audit.Record, int64, error) {
	limit, offset = normalizePage(limit, offset)

	records, err := s.auditRepo.ListByAggregate(ctx, caller.TenantID, aggregateID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.auditRepo.CountByAggregate(ctx, caller.TenantID, aggregateID)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
