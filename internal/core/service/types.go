package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smb-finance-ledger/internal/config"
	"github.com/smb-finance-ledger/internal/domain/entity"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/staging"
)

// WriteInput is everything the ledger writer needs for one staging row
type WriteInput struct {
	Row            *staging.Row
	Entity         *entity.Entity
	CategoryID     *uuid.UUID
	KindHint       *ledger.Kind
	Nature         *ledger.Nature
	ResultOverride *ledger.ResultFlags
}

// LockState is the lease on a staging row after a lock or unlock call.
// Version is the row version a follow-up approve or reject must expect.
type LockState struct {
	Changed   bool   // the call took or dropped the caller's lease
	LockOwner string // empty when the row is unlocked
	Version   int64
}

// Locked reports whether anyone holds the row
func (s LockState) Locked() bool {
	return s.LockOwner != ""
}

// ApproveCommand turns a staging row into a ledger entry
type ApproveCommand struct {
	RowID           uuid.UUID
	EntityID        uuid.UUID
	CategoryID      uuid.UUID
	ExpectedVersion *int64
	KindHint        *ledger.Kind
	Nature          *ledger.Nature
	ResultOverride  *ledger.ResultFlags
}

// RejectCommand discards a staging row with a reason
type RejectCommand struct {
	RowID           uuid.UUID
	Reason          string
	ExpectedVersion *int64
}

// SkipCommand postpones a pending staging row
type SkipCommand struct {
	RowID           uuid.UUID
	ExpectedVersion *int64
}

// PersonalLeg selects which transfer leg carries the personal result flag
type PersonalLeg string

const (
	PersonalLegDestination PersonalLeg = "destination"
	PersonalLegSource      PersonalLeg = "source"
	PersonalLegBoth        PersonalLeg = "both"
)

// Valid reports whether l is a known leg selector; empty means destination
func (l PersonalLeg) Valid() bool {
	switch l {
	case "", PersonalLegDestination, PersonalLegSource, PersonalLegBoth:
		return true
	}
	return false
}

// TransferCommand moves Amount from the source account to the destination account
type TransferCommand struct {
	SrcAccountID           uuid.UUID
	SrcEntityID            uuid.UUID
	DstAccountID           uuid.UUID
	DstEntityID            uuid.UUID
	Amount                 decimal.Decimal
	Date                   time.Time
	Description            string
	Nature                 ledger.Nature
	CountsInPersonalResult bool
	PersonalLeg            PersonalLeg
}

// ReconciliationPolicy bounds the payment search for an invoice
type ReconciliationPolicy struct {
	WindowDays            int
	DefaultToleranceCents int64
	CandidateKinds        []ledger.Kind
	ExcludeInvoiceAccount bool
	PayerAccountTypes     []string
	MaxCandidates         int
}

// DefaultReconciliationPolicy matches within three days and one currency unit
func DefaultReconciliationPolicy() ReconciliationPolicy {
	return ReconciliationPolicy{
		WindowDays:            3,
		DefaultToleranceCents: 100,
		CandidateKinds:        []ledger.Kind{ledger.KindExpense, ledger.KindTransfer},
		ExcludeInvoiceAccount: true,
		MaxCandidates:         50,
	}
}

// PolicyFromConfig builds the policy from loaded configuration
func PolicyFromConfig(cfg config.ReconciliationConfig) ReconciliationPolicy {
	kinds := make([]ledger.Kind, 0, len(cfg.CandidateKinds))
	for _, k := range cfg.CandidateKinds {
		kinds = append(kinds, ledger.Kind(strings.ToLower(k)))
	}
	return ReconciliationPolicy{
		WindowDays:            cfg.WindowDays,
		DefaultToleranceCents: cfg.DefaultToleranceCents,
		CandidateKinds:        kinds,
		ExcludeInvoiceAccount: cfg.ExcludeInvoiceAccount,
		PayerAccountTypes:     cfg.PayerAccountTypes,
		MaxCandidates:         cfg.MaxCandidates,
	}
}

// ToleranceFromCents converts cents to a currency amount
func ToleranceFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// MatchResult is the outcome of one reconciliation attempt. Matched=false is not an error.
type MatchResult struct {
	InvoiceID         uuid.UUID  `json:"invoice_id"`
	Matched           bool       `json:"matched"`
	EntryID           *uuid.UUID `json:"entry_id,omitempty"`
	AlreadyReconciled bool       `json:"already_reconciled"`
}

// Scope selects which result flag a P&L report follows
type Scope string

const (
	ScopeCompany  Scope = "company"
	ScopePersonal Scope = "personal"
)

// Valid reports whether s is a known scope
func (s Scope) Valid() bool {
	return s == ScopeCompany || s == ScopePersonal
}

// PnLTotals are the folded amounts, expenses as a positive value
type PnLTotals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// PnLReport is a P&L for one tenant, scope and period
type PnLReport struct {
	Scope      Scope     `json:"scope"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Currency   string    `json:"currency"`
	EntryCount int       `json:"entry_count"`
	PnLTotals
	Formatted FormattedTotals `json:"formatted"`
}

// FormattedTotals carries display strings in the report currency
type FormattedTotals struct {
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}
