package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/domain/ledger"
)

// StagingHandler serves the triage screen: listing, leasing and deciding staging rows
type StagingHandler struct {
	lockService     service.LockService
	approvalService service.ApprovalService
	queryService    service.QueryService
	logger          *slog.Logger
}

// NewStagingHandler creates a new staging handler
func NewStagingHandler(
	logger *slog.Logger,
	lockService service.LockService,
	approvalService service.ApprovalService,
	queryService service.QueryService,
) *StagingHandler {
	return &StagingHandler{
		lockService:     lockService,
		approvalService: approvalService,
		queryService:    queryService,
		logger:          logger,
	}
}

// List returns the caller's pending and skipped rows, newest first
func (h *StagingHandler) List(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var params PaginationParams
	if !bindQuery(c, h.logger, &params) {
		return
	}

	rows, total, err := h.queryService.ListStaging(c.Request.Context(), caller, params.PerPage, params.offset())
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	response := make([]StagingRowResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, toStagingRowResponse(row))
	}
	RespondWithPaginatedData(c, http.StatusOK, response, params.Page, params.PerPage, total)
}

// Lock leases a row to the caller. A row held by someone else is a conflict.
func (h *StagingHandler) Lock(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	rowID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	state, err := h.lockService.Acquire(c.Request.Context(), caller, rowID)
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}
	if !state.Changed {
		message := "staging row " + rowID.String() + " is already decided"
		if state.Locked() {
			message = "staging row " + rowID.String() + " is locked by " + state.LockOwner
		}
		RespondWithErrorInfo(c, http.StatusConflict, &ErrorInfo{
			Code:      "LOCK_CONFLICT",
			Message:   message,
			Retryable: true,
		})
		return
	}

	RespondOK(c, toLockResponse(rowID, state))
}

// Unlock releases the caller's lease; releasing a lease held by someone else changes nothing
func (h *StagingHandler) Unlock(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	rowID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	state, err := h.lockService.Release(c.Request.Context(), caller, rowID)
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, toLockResponse(rowID, state))
}

// ReapLocks clears leases of the caller's tenant older than max_age_minutes
func (h *StagingHandler) ReapLocks(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var req ReapLocksRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tenantID := caller.TenantID
	count, err := h.lockService.ReapStale(c.Request.Context(), time.Duration(req.MaxAgeMinutes)*time.Minute, &tenantID)
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, ReapLocksResponse{Released: count})
}

// Approve posts the row to the ledger
func (h *StagingHandler) Approve(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	rowID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	var req ApproveRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	cmd := service.ApproveCommand{
		RowID:           rowID,
		EntityID:        mustUUID(req.EntityID),
		CategoryID:      mustUUID(req.CategoryID),
		ExpectedVersion: req.ExpectedVersion,
		ResultOverride:  req.resultOverride(),
	}
	if req.Kind != "" {
		kind := ledger.Kind(req.Kind)
		cmd.KindHint = &kind
	}
	if req.EconomicNature != "" {
		nature := ledger.Nature(req.EconomicNature)
		cmd.Nature = &nature
	}

	entryID, err := h.approvalService.Approve(c.Request.Context(), caller, cmd)
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondCreated(c, ApproveResponse{RowID: rowID.String(), EntryID: entryID.String()})
}

// Reject discards the row with a reason
func (h *StagingHandler) Reject(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	rowID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	var req RejectRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	err := h.approvalService.Reject(c.Request.Context(), caller, service.RejectCommand{
		RowID:           rowID,
		Reason:          req.Reason,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

// Skip postpones a pending row
func (h *StagingHandler) Skip(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	rowID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	var req SkipRequest
	if !bindOptionalJSON(c, h.logger, &req) {
		return
	}

	err := h.approvalService.Skip(c.Request.Context(), caller, service.SkipCommand{
		RowID:           rowID,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}
