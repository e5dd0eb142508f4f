// Package ledger defines posted financial entries.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies a ledger entry
type Kind string

const (
	KindIncome     Kind = "income"
	KindExpense    Kind = "expense"
	KindTransfer   Kind = "transfer"
	KindAdjustment Kind = "adjustment"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer, KindAdjustment:
		return true
	}
	return false
}

// Hintable reports whether k may be requested explicitly when approving a staging row.
// Transfers are only produced by the transfer composer.
func (k Kind) Hintable() bool {
	return k == KindIncome || k == KindExpense || k == KindAdjustment
}

// KindForAmount derives income or expense from the sign
func KindForAmount(amount decimal.Decimal) Kind {
	if amount.IsNegative() {
		return KindExpense
	}
	return KindIncome
}

// Amounts are stored as NUMERIC(14,2)
const AmountScale = 2

// MaxAmount is the largest magnitude a NUMERIC(14,2) column holds
var MaxAmount = decimal.New(99999999999999, -AmountScale)

// AmountFits reports whether amount has at most two decimal places and its
// magnitude does not exceed MaxAmount
func AmountFits(amount decimal.Decimal) bool {
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return false
	}
	return amount.Abs().LessThanOrEqual(MaxAmount)
}

// Nature is the economic meaning of an entry, used to route it to a result scope
type Nature string

const (
	NatureOperating         Nature = "operating"
	NatureInternalMove      Nature = "internal_move"
	NatureInvestment        Nature = "investment"
	NatureOwnerDraw         Nature = "owner_draw"
	NatureOwnerContribution Nature = "owner_contribution"
)

// Valid reports whether n is a known nature
func (n Nature) Valid() bool {
	switch n {
	case NatureOperating, NatureInternalMove, NatureInvestment, NatureOwnerDraw, NatureOwnerContribution:
		return true
	}
	return false
}

// ResultFlags says which P&L scopes an entry counts towards
type ResultFlags struct {
	Company  bool `json:"counts_in_company_result"`
	Personal bool `json:"counts_in_personal_result"`
}

// Entry is a posted ledger transaction. Only the invoice link changes after creation.
type Entry struct {
	ID                     uuid.UUID       `json:"id"`
	OwnerID                uuid.UUID       `json:"owner_id"`
	AccountID              uuid.UUID       `json:"account_id"`
	EntityID               uuid.UUID       `json:"entity_id"`
	CategoryID             *uuid.UUID      `json:"category_id,omitempty"`
	Date                   time.Time       `json:"date"`
	Description            string          `json:"description"`
	Amount                 decimal.Decimal `json:"amount"`
	Kind                   Kind            `json:"kind"`
	EconomicNature         *Nature         `json:"economic_nature,omitempty"`
	TransferGroupID        *uuid.UUID      `json:"transfer_group_id,omitempty"`
	CountsInCompanyResult  bool            `json:"counts_in_company_result"`
	CountsInPersonalResult bool            `json:"counts_in_personal_result"`
	ParentID               *uuid.UUID      `json:"parent_id,omitempty"`
	InvoiceID              *uuid.UUID      `json:"invoice_id,omitempty"`
	SourceStagingID        *uuid.UUID      `json:"source_staging_id,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
}
