package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// Outbox payloads. Field names are part of the audit record contract.

type entryPostedPayload struct {
	StagingRowID uuid.UUID     `json:"staging_row_id"`
	StagingVer   int64         `json:"staging_version"`
	Entry        *ledger.Entry `json:"entry"`
}

type stagingRejectedPayload struct {
	StagingRowID uuid.UUID `json:"staging_row_id"`
	Reason       string    `json:"reason"`
	StagingVer   int64     `json:"staging_version"`
}

type stagingSkippedPayload struct {
	StagingRowID uuid.UUID `json:"staging_row_id"`
	StagingVer   int64     `json:"staging_version"`
}

type transferCreatedPayload struct {
	TransferGroupID uuid.UUID       `json:"transfer_group_id"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
	Nature          ledger.Nature   `json:"economic_nature"`
	Legs            []*ledger.Entry `json:"legs"`
}

type invoiceReconciledPayload struct {
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	EntryID        uuid.UUID       `json:"entry_id"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	PaidAt         time.Time       `json:"paid_at"`
	PayerAccountID uuid.UUID       `json:"payer_account_id"`
	Tolerance      decimal.Decimal `json:"tolerance"`
}

type entityDeletedPayload struct {
	EntityID uuid.UUID          `json:"entity_id"`
	Usage    shared.EntityUsage `json:"usage"`
}
