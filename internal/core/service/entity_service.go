package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/domain/entity"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

type EntityServiceImpl struct {
	txManager     persistence.TxManager
	entityRepo    entity.Repository
	outboxManager OutboxManager
	logger        *slog.Logger
}

func NewEntityService(txManager persistence.TxManager, entityRepo entity.Repository, outboxManager OutboxManager, logger *slog.Logger) EntityService {
	return &EntityServiceImpl{
		txManager:     txManager,
		entityRepo:    entityRepo,
		outboxManager: outboxManager,
		logger:        logger,
	}
}

func (s *EntityServiceImpl) Usage(ctx context.Context, caller shared.Caller, entityID uuid.UUID) (shared.EntityUsage, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, caller, entityID); err != nil {
		return shared.EntityUsage{}, err
	}
	return s.entityRepo.Usage(ctx, entityID)
}

// Delete removes an entity nothing refers to. Referenced entities must be
// deactivated instead; the error carries the reference counts.
func (s *EntityServiceImpl) Delete(ctx context.Context, caller shared.Caller, entityID uuid.UUID) error {
	logger := requestLogger(ctx, s.logger).With("entity_id", entityID.String())

	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		entityRepoTx := s.entityRepo.WithTx(tx)

		if _, err := ownedEntity(ctx, entityRepoTx, caller, entityID); err != nil {
			return err
		}

		usage, err := entityRepoTx.Usage(ctx, entityID)
		if err != nil {
			return err
		}
		if usage.Total() > 0 {
			return shared.ErrEntityInUse{EntityID: entityID, Usage: usage}
		}

		if err = entityRepoTx.Delete(ctx, entityID); err != nil {
			return err
		}

		payload := entityDeletedPayload{EntityID: entityID, Usage: usage}
		return s.outboxManager.Record(ctx, tx, caller, shared.EventEntityDeleted, shared.ResourceEntity, entityID, payload)
	})
	if err != nil {
		logger.Warn("Entity not deleted", "error", err)
		return err
	}

	logger.Info("Entity deleted")
	return nil
}

func ownedEntity(ctx context.Context, repo entity.Repository, caller shared.Caller, entityID uuid.UUID) (*entity.Entity, error) {
	ent, err := repo.GetByID(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if ent.OwnerID != caller.TenantID {
		return nil, shared.ErrOwnershipViolation{Resource: shared.ResourceEntity, ID: entityID}
	}
	return ent, nil
}
