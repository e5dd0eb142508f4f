package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/domain/ownership"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

// ownerQueries is a closed set so no table name ever comes from input
var ownerQueries = map[ownership.Resource]string{
	ownership.Account:  `SELECT user_id FROM accounts WHERE id = $1`,
	ownership.Entity:   `SELECT user_id FROM entities WHERE id = $1`,
	ownership.Category: `SELECT user_id FROM categories WHERE id = $1`,
	ownership.Invoice:  `SELECT user_id FROM invoices WHERE id = $1`,
}

// OwnershipChecker implements ownership.Checker with one lookup per reference
type OwnershipChecker struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOwnershipChecker creates a checker over the pool
func NewOwnershipChecker(logger *slog.Logger, db *persistence.PostgresDB) ownership.Checker {
	return &OwnershipChecker{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (c *OwnershipChecker) WithTx(tx pgx.Tx) ownership.Checker {
	return &OwnershipChecker{
		querier: tx,
		logger:  c.logger,
	}
}

// Check stops at the first reference that is missing or owned by another tenant
func (c *OwnershipChecker) Check(ctx context.Context, tenantID uuid.UUID, refs ...ownership.Ref) error {
	for _, ref := range refs {
		query, ok := ownerQueries[ref.Resource]
		if !ok {
			return fmt.Errorf("unknown ownership resource %q", ref.Resource)
		}

		var ownerID uuid.UUID
		if err := c.querier.QueryRow(ctx, query, ref.ID).Scan(&ownerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound{Resource: string(ref.Resource), ID: ref.ID}
			}
			c.logger.Error("Failed to check ownership", "resource", ref.Resource, "id", ref.ID.String(), "error", err)
			return fmt.Errorf("failed to check %s ownership: %w", ref.Resource, err)
		}

		if ownerID != tenantID {
			c.logger.Warn("Cross-tenant reference rejected",
				"resource", ref.Resource,
				"id", ref.ID.String(),
				"tenant_id", tenantID.String(),
			)
			return shared.ErrOwnershipViolation{Resource: string(ref.Resource), ID: ref.ID}
		}
	}

	return nil
}
