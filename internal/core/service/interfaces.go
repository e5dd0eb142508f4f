package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/smb-finance-ledger/internal/domain/account"
	"github.com/smb-finance-ledger/internal/domain/audit"
	"github.com/smb-finance-ledger/internal/domain/invoice"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
)

// LockService mediates collaborative edit leases on staging rows
type LockService interface {
	Acquire(ctx context.Context, caller shared.Caller, rowID uuid.UUID) (LockState, error)
	Release(ctx context.Context, caller shared.Caller, rowID uuid.UUID) (LockState, error)
	// ReapStale clears leases older than maxAge; a nil tenantID sweeps every tenant
	ReapStale(ctx context.Context, maxAge time.Duration, tenantID *uuid.UUID) (int64, error)
}

// ApprovalService executes staging row lifecycle transitions
type ApprovalService interface {
	Approve(ctx context.Context, caller shared.Caller, cmd ApproveCommand) (uuid.UUID, error)
	Reject(ctx context.Context, caller shared.Caller, cmd RejectCommand) error
	Skip(ctx context.Context, caller shared.Caller, cmd SkipCommand) error
}

// TransferService composes and reads balanced transfer pairs
type TransferService interface {
	CreateTransfer(ctx context.Context, caller shared.Caller, cmd TransferCommand) (uuid.UUID, error)
	GetTransfer(ctx context.Context, caller shared.Caller, groupID uuid.UUID) ([]*ledger.Entry, error)
}

// ReconciliationService binds card invoices to the bank payment that settled them
type ReconciliationService interface {
	AutoReconcile(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID, toleranceCents *int64) (MatchResult, error)
	GetInvoice(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*invoice.Invoice, error)
}

// EntityService guards removal of economic entities
type EntityService interface {
	Usage(ctx context.Context, caller shared.Caller, entityID uuid.UUID) (shared.EntityUsage, error)
	Delete(ctx context.Context, caller shared.Caller, entityID uuid.UUID) error
}

// QueryService serves the read side of the triage screen and the ledger
type QueryService interface {
	ListStaging(ctx context.Context, caller shared.Caller, limit, offset int) ([]*staging.Row, int64, error)
	GetEntry(ctx context.Context, caller shared.Caller, entryID uuid.UUID) (*ledger.Entry, error)
	ListAccounts(ctx context.Context, caller shared.Caller) ([]*account.Account, error)
}

// ReportService computes profit and loss totals
type ReportService interface {
	ProfitAndLoss(ctx context.Context, caller shared.Caller, scope Scope, from, to time.Time) (*PnLReport, error)
}

// AuditService reads the projected mutation history
type AuditService interface {
	History(ctx context.Context, caller shared.Caller, aggregateID uuid.UUID, limit, offset int) ([]*audit.Record, int64, error)
}

// LedgerWriter converts an approved staging row into a ledger entry inside tx
type LedgerWriter interface {
	Write(ctx context.Context, tx pgx.Tx, in WriteInput) (*ledger.Entry, error)
}

// OutboxManager records a mutation event in the same transaction as the mutation
type OutboxManager interface {
	Record(ctx context.Context, tx pgx.Tx, caller shared.Caller, eventType shared.EventType, aggregateType string, aggregateID uuid.UUID, payload any) error
}

// ReconciliationMatcher picks the best payment among already-fetched candidates
type ReconciliationMatcher interface {
	SelectMatch(inv *invoice.Invoice, candidates []*ledger.Entry, policy ReconciliationPolicy, tolerance decimal.Decimal) *ledger.Entry
}

// PnLCalculator folds entries into income, expenses and net for a scope
type PnLCalculator interface {
	Calculate(entries []*ledger.Entry, scope Scope) PnLTotals
	Format(totals PnLTotals, currency string) FormattedTotals
}
