// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every mutation is a single conditional statement so callers can compose them
// inside one transaction through WithTx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

const stagingColumns = `id, user_id, account_id, date, description, amount, suggested_entity_id, suggested_category_id,
		status, lock_owner, locked_at, version, ledger_entry_id, rejection_reason, created_at, updated_at`

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// StagingRepository implements staging.Repository for PostgreSQL
type StagingRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewStagingRepository creates a new PostgreSQL staging repository
func NewStagingRepository(logger *slog.Logger, db *persistence.PostgresDB) staging.Repository {
	return &StagingRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *StagingRepository) WithTx(tx pgx.Tx) staging.Repository {
	return &StagingRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanStagingRow(s rowScanner) (*staging.Row, error) {
	var row staging.Row
	err := s.Scan(
		&row.ID,
		&row.OwnerID,
		&row.AccountID,
		&row.Date,
		&row.Description,
		&row.Amount,
		&row.SuggestedEntityID,
		&row.SuggestedCategoryID,
		&row.Status,
		&row.LockOwner,
		&row.LockedAt,
		&row.Version,
		&row.LedgerEntryID,
		&row.RejectionReason,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByID retrieves a staging row by its ID
func (r *StagingRepository) GetByID(ctx context.Context, id uuid.UUID) (*staging.Row, error) {
	query := `SELECT ` + stagingColumns + `
		FROM staging_transactions
		WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate retrieves a staging row and holds a row lock until the transaction ends
func (r *StagingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*staging.Row, error) {
	query := `SELECT ` + stagingColumns + `
		FROM staging_transactions
		WHERE id = $1
		FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *StagingRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*staging.Row, error) {
	row, err := scanStagingRow(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound{Resource: shared.ResourceStagingRow, ID: id}
		}
		r.logger.Error("Failed to get staging row", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get staging row: %w", err)
	}
	return row, nil
}

// ListOpen returns pending and skipped rows of one tenant, newest first
func (r *StagingRepository) ListOpen(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*staging.Row, error) {
	query := `SELECT ` + stagingColumns + `
		FROM staging_transactions
		WHERE user_id = $1 AND status IN ('pending', 'skipped')
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.querier.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list staging rows", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list staging rows: %w", err)
	}
	defer rows.Close()

	var result []*staging.Row
	for rows.Next() {
		row, err := scanStagingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staging row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over staging rows: %w", err)
	}

	return result, nil
}

// CountOpen counts pending and skipped rows of one tenant
func (r *StagingRepository) CountOpen(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM staging_transactions WHERE user_id = $1 AND status IN ('pending', 'skipped')`

	var count int64
	if err := r.querier.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count staging rows: %w", err)
	}
	return count, nil
}

// AcquireLock is a compare-and-set on lock_owner. It never blocks.
func (r *StagingRepository) AcquireLock(ctx context.Context, id, ownerID uuid.UUID, holder string, now time.Time) (int64, bool, error) {
	query := `
		UPDATE staging_transactions
		SET lock_owner = $1, locked_at = $2, version = version + 1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND status IN ('pending', 'skipped')
			AND (lock_owner IS NULL OR lock_owner = $1)
		RETURNING version
	`

	var version int64
	err := r.querier.QueryRow(ctx, query, holder, now, id, ownerID).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		r.logger.Error("Failed to acquire staging lock", "id", id.String(), "holder", holder, "error", err)
		return 0, false, fmt.Errorf("failed to acquire staging lock: %w", err)
	}

	return version, true, nil
}

// ReleaseLock clears the lock only when holder owns it
func (r *StagingRepository) ReleaseLock(ctx context.Context, id uuid.UUID, holder string, now time.Time) (int64, bool, error) {
	query := `
		UPDATE staging_transactions
		SET lock_owner = NULL, locked_at = NULL, version = version + 1, updated_at = $1
		WHERE id = $2 AND lock_owner = $3
		RETURNING version
	`

	var version int64
	err := r.querier.QueryRow(ctx, query, now, id, holder).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		r.logger.Error("Failed to release staging lock", "id", id.String(), "holder", holder, "error", err)
		return 0, false, fmt.Errorf("failed to release staging lock: %w", err)
	}

	return version, true, nil
}

// ReapStale clears every lock taken before cutoff regardless of holder
func (r *StagingRepository) ReapStale(ctx context.Context, cutoff time.Time, ownerID *uuid.UUID, now time.Time) (int64, error) {
	query := `
		UPDATE staging_transactions
		SET lock_owner = NULL, locked_at = NULL, version = version + 1, updated_at = $1
		WHERE lock_owner IS NOT NULL AND locked_at < $2
			AND ($3::uuid IS NULL OR user_id = $3)
	`

	result, err := r.querier.Exec(ctx, query, now, cutoff, ownerID)
	if err != nil {
		r.logger.Error("Failed to reap stale staging locks", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to reap stale staging locks: %w", err)
	}

	return result.RowsAffected(), nil
}

// MarkApproved closes the row against its ledger entry when version still matches
func (r *StagingRepository) MarkApproved(ctx context.Context, id uuid.UUID, version int64, entryID uuid.UUID, now time.Time) error {
	query := `
		UPDATE staging_transactions
		SET status = 'approved', ledger_entry_id = $1, lock_owner = NULL, locked_at = NULL,
			version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4 AND status IN ('pending', 'skipped')
	`

	return r.execVersioned(ctx, "approve", id, query, entryID, now, id, version)
}

// MarkRejected stores the reason and closes the row when version still matches
func (r *StagingRepository) MarkRejected(ctx context.Context, id uuid.UUID, version int64, reason string, now time.Time) error {
	query := `
		UPDATE staging_transactions
		SET status = 'rejected', rejection_reason = $1, lock_owner = NULL, locked_at = NULL,
			version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4 AND status IN ('pending', 'skipped')
	`

	return r.execVersioned(ctx, "reject", id, query, reason, now, id, version)
}

// MarkSkipped defers a pending row when version still matches
func (r *StagingRepository) MarkSkipped(ctx context.Context, id uuid.UUID, version int64, now time.Time) error {
	query := `
		UPDATE staging_transactions
		SET status = 'skipped', lock_owner = NULL, locked_at = NULL,
			version = version + 1, updated_at = $1
		WHERE id = $2 AND version = $3 AND status = 'pending'
	`

	return r.execVersioned(ctx, "skip", id, query, now, id, version)
}

func (r *StagingRepository) execVersioned(ctx context.Context, op string, id uuid.UUID, query string, args ...any) error {
	result, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update staging row", "op", op, "id", id.String(), "error", err)
		return fmt.Errorf("failed to %s staging row: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStaleVersion{Resource: shared.ResourceStagingRow, ID: id}
	}

	return nil
}
