package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smb-finance-ledger/internal/domain/entity"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

const foreignKeyViolation = "23503"

// EntityRepository implements entity.Repository for PostgreSQL
type EntityRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewEntityRepository creates a new PostgreSQL entity repository
func NewEntityRepository(logger *slog.Logger, db *persistence.PostgresDB) entity.Repository {
	return &EntityRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *EntityRepository) WithTx(tx pgx.Tx) entity.Repository {
	return &EntityRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByID retrieves an entity by its ID
func (r *EntityRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Entity, error) {
	query := `
		SELECT id, user_id, name, entity_type, active
		FROM entities
		WHERE id = $1
	`

	var e entity.Entity
	err := r.querier.QueryRow(ctx, query, id).Scan(&e.ID, &e.OwnerID, &e.Name, &e.Type, &e.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound{Resource: shared.ResourceEntity, ID: id}
		}
		r.logger.Error("Failed to get entity", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	return &e, nil
}

// Usage counts ledger entries, accounts and staging suggestions referencing the entity
func (r *EntityRepository) Usage(ctx context.Context, id uuid.UUID) (shared.EntityUsage, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE entity_id = $1),
			(SELECT COUNT(*) FROM accounts WHERE entity_id = $1),
			(SELECT COUNT(*) FROM staging_transactions WHERE suggested_entity_id = $1)
	`

	var usage shared.EntityUsage
	if err := r.querier.QueryRow(ctx, query, id).Scan(&usage.Transactions, &usage.Accounts, &usage.Staging); err != nil {
		r.logger.Error("Failed to count entity usage", "id", id.String(), "error", err)
		return shared.EntityUsage{}, fmt.Errorf("failed to count entity usage: %w", err)
	}

	return usage, nil
}

// Delete removes an unreferenced entity
func (r *EntityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM entities WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return shared.ErrEntityInUse{EntityID: id}
		}
		r.logger.Error("Failed to delete entity", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete entity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrNotFound{Resource: shared.ResourceEntity, ID: id}
	}

	return nil
}
