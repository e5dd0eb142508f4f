package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/core/service"
)

// LedgerHandler serves posted ledger entries
type LedgerHandler struct {
	queryService service.QueryService
	logger       *slog.Logger
}

func NewLedgerHandler(logger *slog.Logger, queryService service.QueryService) *LedgerHandler {
	return &LedgerHandler{
		queryService: queryService,
		logger:       logger,
	}
}

func (h *LedgerHandler) GetEntry(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	entryID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	entry, err := h.queryService.GetEntry(c.Request.Context(), caller, entryID)
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, toEntryResponse(entry))
}
