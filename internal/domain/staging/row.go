// Package staging holds imported statement lines awaiting triage and the
// lifecycle rules that govern them.
package staging

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the persisted lifecycle state of a staging row.
// Holding a lock is an attribute of a pending or skipped row, not a status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSkipped  Status = "skipped"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusSkipped, StatusApproved, StatusRejected},
	StatusSkipped: {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Open reports whether the row is still awaiting a decision and may be locked
func (s Status) Open() bool {
	return s == StatusPending || s == StatusSkipped
}

// Terminal reports whether no further transitions are possible
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Row represents an imported statement line
type Row struct {
	ID                  uuid.UUID       `json:"id"`
	OwnerID             uuid.UUID       `json:"owner_id"`
	AccountID           uuid.UUID       `json:"account_id"`
	Date                time.Time       `json:"date"`
	Description         string          `json:"description"`
	Amount              decimal.Decimal `json:"amount"`
	SuggestedEntityID   *uuid.UUID      `json:"suggested_entity_id,omitempty"`
	SuggestedCategoryID *uuid.UUID      `json:"suggested_category_id,omitempty"`
	Status              Status          `json:"status"`
	LockOwner           *string         `json:"lock_owner,omitempty"`
	LockedAt            *time.Time      `json:"locked_at,omitempty"`
	Version             int64           `json:"version"`
	LedgerEntryID       *uuid.UUID      `json:"ledger_entry_id,omitempty"`
	RejectionReason     *string         `json:"rejection_reason,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// IsLocked reports whether any holder leases the row
func (r *Row) IsLocked() bool {
	return r.LockOwner != nil && *r.LockOwner != ""
}

// LockedByOther reports whether someone other than holder leases the row
func (r *Row) LockedByOther(holder string) bool {
	return r.IsLocked() && *r.LockOwner != holder
}

// LockAge is how long the current lease has been held
func (r *Row) LockAge(now time.Time) time.Duration {
	if r.LockedAt == nil {
		return 0
	}
	return now.Sub(*r.LockedAt)
}
