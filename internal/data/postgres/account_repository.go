package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/domain/account"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository that runs every call inside tx
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, user_id, entity_id, name, account_type, close_day, due_day, active
		FROM accounts
		WHERE id = $1
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&acc.ID,
		&acc.OwnerID,
		&acc.EntityID,
		&acc.Name,
		&acc.Type,
		&acc.CloseDay,
		&acc.DueDay,
		&acc.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound{Resource: shared.ResourceAccount, ID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

// ListByOwner lists a tenant's accounts by name
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	query := `
		SELECT id, user_id, entity_id, name, account_type, close_day, due_day, active
		FROM accounts
		WHERE user_id = $1
		ORDER BY name ASC
	`

	rows, err := r.querier.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("Failed to list accounts", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		var acc account.Account
		if err := rows.Scan(&acc.ID, &acc.OwnerID, &acc.EntityID, &acc.Name, &acc.Type, &acc.CloseDay, &acc.DueDay, &acc.Active); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}
