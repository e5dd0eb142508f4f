// Package ownership answers whether a referenced row lives in the caller's tenant.
package ownership

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Resource names a tenant-scoped table that can be referenced by id
type Resource string

const (
	Account  Resource = "account"
	Entity   Resource = "entity"
	Category Resource = "category"
	Invoice  Resource = "invoice"
)

// Ref is one reference to verify
type Ref struct {
	Resource Resource
	ID       uuid.UUID
}

// Checker verifies references. Check returns shared.ErrNotFound when a row is
// missing and shared.ErrOwnershipViolation when it belongs to another tenant.
type Checker interface {
	Check(ctx context.Context, tenantID uuid.UUID, refs ...Ref) error
	WithTx(tx pgx.Tx) Checker
}
