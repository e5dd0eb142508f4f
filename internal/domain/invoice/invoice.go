// Package invoice models credit-card statements awaiting payment.
package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Status is derived from payment and due date, never set directly
type Status string

const (
	StatusOpen    Status = "open"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Invoice represents a card billing cycle
type Invoice struct {
	ID             uuid.UUID        `json:"id"`
	OwnerID        uuid.UUID        `json:"owner_id"`
	AccountID      uuid.UUID        `json:"account_id"`
	CycleStart     time.Time        `json:"cycle_start"`
	CycleEnd       time.Time        `json:"cycle_end"`
	DueDate        time.Time        `json:"due_date"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	PaidAmount     *decimal.Decimal `json:"paid_amount,omitempty"`
	PaidAt         *time.Time       `json:"paid_at,omitempty"`
	PayerAccountID *uuid.UUID       `json:"payer_account_id,omitempty"`
	MatchedEntryID *uuid.UUID       `json:"matched_entry_id,omitempty"`
	Status         Status           `json:"status"`
	Version        int64            `json:"version"`
}

// IsPaid reports whether the paid amount covers the total.
// An invoice with nothing to pay is settled.
func (i *Invoice) IsPaid() bool {
	if !i.TotalAmount.IsPositive() {
		return true
	}
	return i.PaidAmount != nil && i.PaidAmount.GreaterThanOrEqual(i.TotalAmount)
}

// DerivedStatus computes the status as of now, comparing calendar dates only
func (i *Invoice) DerivedStatus(now time.Time) Status {
	if i.IsPaid() {
		return StatusPaid
	}
	today := truncateDay(now)
	if today.After(truncateDay(i.DueDate)) {
		return StatusOverdue
	}
	return StatusOpen
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Payment is what reconciliation writes onto an invoice
type Payment struct {
	Amount         decimal.Decimal
	PaidAt         time.Time
	PayerAccountID uuid.UUID
	EntryID        uuid.UUID
}

// Repository manages invoice persistence
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// GetForUpdate row-locks the invoice until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	MarkPaid(ctx context.Context, id uuid.UUID, version int64, payment Payment) error
	WithTx(tx pgx.Tx) Repository
}
