package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/core/service"
)

// TransferHandler handles HTTP requests for transfers between accounts
type TransferHandler struct {
	transferService service.TransferService
	logger          *slog.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(logger *slog.Logger, transferService service.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		logger:          logger,
	}
}

// Create posts both legs of a transfer and returns their shared group id
func (h *TransferHandler) Create(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var req CreateTransferRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	groupID, err := h.transferService.CreateTransfer(c.Request.Context(), caller, toTransferCommand(req))
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondCreated(c, TransferResponse{TransferGroupID: groupID.String()})
}

// Get returns both legs of a transfer group
func (h *TransferHandler) Get(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	groupID, ok := pathUUID(c, h.logger, "group_id")
	if !ok {
		return
	}

	legs, err := h.transferService.GetTransfer(c.Request.Context(), caller, groupID)
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	response := TransferResponse{TransferGroupID: groupID.String(), Legs: make([]EntryResponse, 0, len(legs))}
	for _, leg := range legs {
		response.Legs = append(response.Legs, toEntryResponse(leg))
	}
	RespondOK(c, response)
}
