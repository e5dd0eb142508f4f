package staging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository persists staging rows. Every mutation is a single conditional
// UPDATE that also bumps the row version.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Row, error)
	// GetForUpdate row-locks the staging row until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Row, error)
	ListOpen(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Row, error)
	CountOpen(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// AcquireLock succeeds when the row is open and unlocked or already held by
	// holder, and returns the row version after the update.
	AcquireLock(ctx context.Context, id, ownerID uuid.UUID, holder string, now time.Time) (version int64, ok bool, err error)
	// ReleaseLock reports ok=false when holder does not hold the lock
	ReleaseLock(ctx context.Context, id uuid.UUID, holder string, now time.Time) (version int64, ok bool, err error)
	// ReapStale clears locks taken before cutoff; a nil ownerID sweeps every tenant
	ReapStale(ctx context.Context, cutoff time.Time, ownerID *uuid.UUID, now time.Time) (int64, error)

	MarkApproved(ctx context.Context, id uuid.UUID, version int64, entryID uuid.UUID, now time.Time) error
	MarkRejected(ctx context.Context, id uuid.UUID, version int64, reason string, now time.Time) error
	MarkSkipped(ctx context.Context, id uuid.UUID, version int64, now time.Time) error

	WithTx(tx pgx.Tx) Repository
}
