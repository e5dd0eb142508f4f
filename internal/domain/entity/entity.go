// Package entity models the company or people an entry is economically attributed to.
package entity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// Type of the economic subject
type Type string

const (
	TypeCompany Type = "company"
	TypePerson  Type = "person"
	TypeCouple  Type = "couple"
)

// Entity is referenced by ledger entries to attribute economic responsibility
type Entity struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Name    string    `json:"name"`
	Type    Type      `json:"type"`
	Active  bool      `json:"active"`
}

// IsCompany reports whether results attribute to the company scope
func (e *Entity) IsCompany() bool {
	return e.Type == TypeCompany
}

// Repository manages entity persistence
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Entity, error)
	Usage(ctx context.Context, id uuid.UUID) (shared.EntityUsage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx pgx.Tx) Repository
}
