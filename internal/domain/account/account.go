// Package account models the bank, card and wallet accounts entries post to.
package account

import (
	"github.com/google/uuid"
)

// Type distinguishes how an account is used
type Type string

const (
	TypeBank   Type = "bank"
	TypeCard   Type = "card"
	TypeWallet Type = "wallet"
)

// Account represents a money container owned by one tenant
type Account struct {
	ID       uuid.UUID  `json:"id"`
	OwnerID  uuid.UUID  `json:"owner_id"`
	EntityID *uuid.UUID `json:"entity_id,omitempty"`
	Name     string     `json:"name"`
	Type     Type       `json:"type"`
	CloseDay *int       `json:"close_day,omitempty"` // card statement closing day
	DueDay   *int       `json:"due_day,omitempty"`
	Active   bool       `json:"active"`
}

// BelongsTo reports whether the account is inside the tenant
func (a *Account) BelongsTo(tenantID uuid.UUID) bool {
	return a.OwnerID == tenantID
}
