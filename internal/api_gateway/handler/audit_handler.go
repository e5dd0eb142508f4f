package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/core/service"
)

// AuditHandler serves the projected mutation history of an aggregate
type AuditHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(logger *slog.Logger, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// History lists audit records of one aggregate, newest first
func (h *AuditHandler) History(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	aggregateID, ok := pathUUID(c, h.logger, "aggregate_id")
	if !ok {
		return
	}

	var query AuditQuery
	if !bindQuery(c, h.logger, &query) {
		return
	}

	records, total, err := h.auditService.History(c.Request.Context(), caller, aggregateID, query.PerPage, query.offset())
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, records, query.Page, query.PerPage, total)
}
