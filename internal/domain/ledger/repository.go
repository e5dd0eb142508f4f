package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository manages ledger entry persistence
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByTransferGroup(ctx context.Context, ownerID, groupID uuid.UUID) ([]*Entry, error)
	ListForPeriod(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*Entry, error)
	FindReconciliationCandidates(ctx context.Context, q CandidateQuery) ([]*Entry, error)
	// LinkInvoice sets invoice_id only while the entry is unlinked
	LinkInvoice(ctx context.Context, entryID, invoiceID uuid.UUID) error
	WithTx(tx pgx.Tx) Repository
}

// CandidateQuery bounds the payment search for one invoice
type CandidateQuery struct {
	OwnerID           uuid.UUID
	Kinds             []Kind
	From              time.Time
	To                time.Time
	Anchor            time.Time       // invoice due date; results are ordered by distance to it
	Target            decimal.Decimal // invoice total, positive
	Tolerance         decimal.Decimal
	ExcludeAccountID  *uuid.UUID
	PayerAccountTypes []string
	Limit             int
}
