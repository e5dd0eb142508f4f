package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// InvoiceHandler handles HTTP requests for card invoices
type InvoiceHandler struct {
	reconciliationService service.ReconciliationService
	clock                 shared.Clock
	logger                *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(logger *slog.Logger, reconciliationService service.ReconciliationService, clock shared.Clock) *InvoiceHandler {
	return &InvoiceHandler{
		reconciliationService: reconciliationService,
		clock:                 clock,
		logger:                logger,
	}
}

// Reconcile searches for the bank payment of an invoice. No match is a 200 with matched=false.
func (h *InvoiceHandler) Reconcile(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	invoiceID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	var req ReconcileRequest
	if !bindOptionalJSON(c, h.logger, &req) {
		return
	}

	result, err := h.reconciliationService.AutoReconcile(c.Request.Context(), caller, invoiceID, req.ToleranceCents)
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, result)
}

// Get returns an invoice with its status derived as of today
func (h *InvoiceHandler) Get(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	invoiceID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	inv, err := h.reconciliationService.GetInvoice(c.Request.Context(), caller, invoiceID)
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, toInvoiceResponse(inv, h.clock.Now()))
}
