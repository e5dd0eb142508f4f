package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/domain/invoice"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/staging"
)

// ApproveRequest represents a request to approve a staging row
type ApproveRequest struct {
	EntityID               string `json:"entity_id" binding:"required,uuid"`
	CategoryID             string `json:"category_id" binding:"required,uuid"`
	ExpectedVersion        *int64 `json:"expected_version,omitempty" binding:"omitempty,min=1"`
	Kind                   string `json:"kind,omitempty" binding:"omitempty,oneof=income expense adjustment"`
	EconomicNature         string `json:"economic_nature,omitempty" binding:"omitempty,oneof=operating internal_move investment owner_draw owner_contribution"`
	CountsInCompanyResult  *bool  `json:"counts_in_company_result,omitempty"`
	CountsInPersonalResult *bool  `json:"counts_in_personal_result,omitempty"`
}

// resultOverride is set when the client sends either flag; an omitted flag counts as false
func (r ApproveRequest) resultOverride() *ledger.ResultFlags {
	if r.CountsInCompanyResult == nil && r.CountsInPersonalResult == nil {
		return nil
	}
	flags := ledger.ResultFlags{}
	if r.CountsInCompanyResult != nil {
		flags.Company = *r.CountsInCompanyResult
	}
	if r.CountsInPersonalResult != nil {
		flags.Personal = *r.CountsInPersonalResult
	}
	return &flags
}

// RejectRequest represents a request to reject a staging row
type RejectRequest struct {
	Reason          string `json:"reason" binding:"required,max=500"`
	ExpectedVersion *int64 `json:"expected_version,omitempty" binding:"omitempty,min=1"`
}

// SkipRequest represents an optional body for skipping a staging row
type SkipRequest struct {
	ExpectedVersion *int64 `json:"expected_version,omitempty" binding:"omitempty,min=1"`
}

// ReapLocksRequest represents a request to clear stale staging locks
type ReapLocksRequest struct {
	MaxAgeMinutes int `json:"max_age_minutes" binding:"required,min=1"`
}

// ReapLocksResponse reports how many leases were cleared
type ReapLocksResponse struct {
	Released int64 `json:"released"`
}

// LockResponse is the row's lease after a lock or unlock call. Version is
// the value to send as expected_version on approve, reject or skip.
type LockResponse struct {
	RowID    string `json:"row_id"`
	Locked   bool   `json:"locked"`
	LockedBy string `json:"locked_by,omitempty"`
	Version  int64  `json:"version"`
}

func toLockResponse(rowID uuid.UUID, state service.LockState) LockResponse {
	return LockResponse{
		RowID:    rowID.String(),
		Locked:   state.Locked(),
		LockedBy: state.LockOwner,
		Version:  state.Version,
	}
}

// ApproveResponse carries the id of the posted ledger entry
type ApproveResponse struct {
	RowID   string `json:"row_id"`
	EntryID string `json:"entry_id"`
}

// CreateTransferRequest represents a request to move money between two accounts
type CreateTransferRequest struct {
	SrcAccountID           string `json:"src_account_id" binding:"required,uuid"`
	SrcEntityID            string `json:"src_entity_id" binding:"required,uuid"`
	DstAccountID           string `json:"dst_account_id" binding:"required,uuid,nefield=SrcAccountID"`
	DstEntityID            string `json:"dst_entity_id" binding:"required,uuid"`
	Amount                 string `json:"amount" binding:"required,decimal_gt0"`
	Date                   string `json:"date" binding:"required,iso_date"`
	Description            string `json:"description" binding:"max=500"`
	EconomicNature         string `json:"economic_nature" binding:"required,oneof=operating internal_move investment owner_draw owner_contribution"`
	CountsInPersonalResult bool   `json:"counts_in_personal_result"`
	PersonalLeg            string `json:"personal_leg,omitempty" binding:"omitempty,oneof=destination source both"`
}

// TransferResponse carries the group id and both legs of a transfer
type TransferResponse struct {
	TransferGroupID string          `json:"transfer_group_id"`
	Legs            []EntryResponse `json:"legs,omitempty"`
}

// ReconcileRequest represents an optional reconciliation tolerance override
type ReconcileRequest struct {
	ToleranceCents *int64 `json:"tolerance_cents,omitempty" binding:"omitempty,min=0"`
}

// PnLQuery represents the query string of a profit and loss report
type PnLQuery struct {
	Scope string `form:"scope,default=company" binding:"oneof=company personal"`
	From  string `form:"from" binding:"required,iso_date"`
	To    string `form:"to" binding:"required,iso_date"`
}

// AuditQuery represents pagination for an aggregate history
type AuditQuery struct {
	PaginationParams
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=50" binding:"min=1,max=200"`
}

func (p PaginationParams) offset() int {
	return (p.Page - 1) * p.PerPage
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID       string  `json:"id"`
	EntityID *string `json:"entity_id,omitempty"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	CloseDay *int    `json:"close_day,omitempty"`
	DueDay   *int    `json:"due_day,omitempty"`
	Active   bool    `json:"active"`
}

// StagingRowResponse represents a staging row in API responses
type StagingRowResponse struct {
	ID                  string  `json:"id"`
	AccountID           string  `json:"account_id"`
	Date                string  `json:"date"`
	Description         string  `json:"description"`
	Amount              string  `json:"amount"`
	SuggestedEntityID   *string `json:"suggested_entity_id,omitempty"`
	SuggestedCategoryID *string `json:"suggested_category_id,omitempty"`
	Status              string  `json:"status"`
	LockOwner           *string `json:"lock_owner,omitempty"`
	LockedAt            *string `json:"locked_at,omitempty"`
	Version             int64   `json:"version"`
	CreatedAt           string  `json:"created_at"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID                     string  `json:"id"`
	AccountID              string  `json:"account_id"`
	EntityID               string  `json:"entity_id"`
	CategoryID             *string `json:"category_id,omitempty"`
	Date                   string  `json:"date"`
	Description            string  `json:"description"`
	Amount                 string  `json:"amount"`
	Kind                   string  `json:"kind"`
	EconomicNature         *string `json:"economic_nature,omitempty"`
	TransferGroupID        *string `json:"transfer_group_id,omitempty"`
	CountsInCompanyResult  bool    `json:"counts_in_company_result"`
	CountsInPersonalResult bool    `json:"counts_in_personal_result"`
	InvoiceID              *string `json:"invoice_id,omitempty"`
	SourceStagingID        *string `json:"source_staging_id,omitempty"`
	CreatedAt              string  `json:"created_at"`
}

// InvoiceResponse represents a card invoice in API responses
type InvoiceResponse struct {
	ID             string  `json:"id"`
	AccountID      string  `json:"account_id"`
	CycleStart     string  `json:"cycle_start"`
	CycleEnd       string  `json:"cycle_end"`
	DueDate        string  `json:"due_date"`
	TotalAmount    string  `json:"total_amount"`
	PaidAmount     *string `json:"paid_amount,omitempty"`
	PaidAt         *string `json:"paid_at,omitempty"`
	PayerAccountID *string `json:"payer_account_id,omitempty"`
	MatchedEntryID *string `json:"matched_entry_id,omitempty"`
	Status         string  `json:"status"`
}

func toStagingRowResponse(row *staging.Row) StagingRowResponse {
	resp := StagingRowResponse{
		ID:          row.ID.String(),
		AccountID:   row.AccountID.String(),
		Date:        row.Date.Format(dateLayout),
		Description: row.Description,
		Amount:      row.Amount.StringFixed(2),
		Status:      string(row.Status),
		LockOwner:   row.LockOwner,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
	}
	if row.SuggestedEntityID != nil {
		s := row.SuggestedEntityID.String()
		resp.SuggestedEntityID = &s
	}
	if row.SuggestedCategoryID != nil {
		s := row.SuggestedCategoryID.String()
		resp.SuggestedCategoryID = &s
	}
	if row.LockedAt != nil {
		s := row.LockedAt.Format(time.RFC3339)
		resp.LockedAt = &s
	}
	return resp
}

func toEntryResponse(e *ledger.Entry) EntryResponse {
	resp := EntryResponse{
		ID:                     e.ID.String(),
		AccountID:              e.AccountID.String(),
		EntityID:               e.EntityID.String(),
		Date:                   e.Date.Format(dateLayout),
		Description:            e.Description,
		Amount:                 e.Amount.StringFixed(2),
		Kind:                   string(e.Kind),
		CountsInCompanyResult:  e.CountsInCompanyResult,
		CountsInPersonalResult: e.CountsInPersonalResult,
		CreatedAt:              e.CreatedAt.Format(time.RFC3339),
	}
	if e.CategoryID != nil {
		s := e.CategoryID.String()
		resp.CategoryID = &s
	}
	if e.EconomicNature != nil {
		s := string(*e.EconomicNature)
		resp.EconomicNature = &s
	}
	if e.TransferGroupID != nil {
		s := e.TransferGroupID.String()
		resp.TransferGroupID = &s
	}
	if e.InvoiceID != nil {
		s := e.InvoiceID.String()
		resp.InvoiceID = &s
	}
	if e.SourceStagingID != nil {
		s := e.SourceStagingID.String()
		resp.SourceStagingID = &s
	}
	return resp
}

func toInvoiceResponse(inv *invoice.Invoice, now time.Time) InvoiceResponse {
	resp := InvoiceResponse{
		ID:          inv.ID.String(),
		AccountID:   inv.AccountID.String(),
		CycleStart:  inv.CycleStart.Format(dateLayout),
		CycleEnd:    inv.CycleEnd.Format(dateLayout),
		DueDate:     inv.DueDate.Format(dateLayout),
		TotalAmount: inv.TotalAmount.StringFixed(2),
		Status:      string(inv.DerivedStatus(now)),
	}
	if inv.PaidAmount != nil {
		s := inv.PaidAmount.StringFixed(2)
		resp.PaidAmount = &s
	}
	if inv.PaidAt != nil {
		s := inv.PaidAt.Format(dateLayout)
		resp.PaidAt = &s
	}
	if inv.PayerAccountID != nil {
		s := inv.PayerAccountID.String()
		resp.PayerAccountID = &s
	}
	if inv.MatchedEntryID != nil {
		s := inv.MatchedEntryID.String()
		resp.MatchedEntryID = &s
	}
	return resp
}

func toTransferCommand(req CreateTransferRequest) service.TransferCommand {
	return service.TransferCommand{
		SrcAccountID:           mustUUID(req.SrcAccountID),
		SrcEntityID:            mustUUID(req.SrcEntityID),
		DstAccountID:           mustUUID(req.DstAccountID),
		DstEntityID:            mustUUID(req.DstEntityID),
		Amount:                 mustDecimal(req.Amount),
		Date:                   parseDate(req.Date),
		Description:            req.Description,
		Nature:                 ledger.Nature(req.EconomicNature),
		CountsInPersonalResult: req.CountsInPersonalResult,
		PersonalLeg:            service.PersonalLeg(req.PersonalLeg),
	}
}
