package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)
	WithTx(tx pgx.Tx) Repository
}
