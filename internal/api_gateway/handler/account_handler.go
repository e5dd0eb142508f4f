package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/domain/account"
)

// AccountHandler handles HTTP requests for the caller's accounts
type AccountHandler struct {
	queryService service.QueryService
	logger       *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, queryService service.QueryService) *AccountHandler {
	return &AccountHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// List returns every account of the caller's tenant
func (h *AccountHandler) List(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	accounts, err := h.queryService.ListAccounts(c.Request.Context(), caller)
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	response := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		response = append(response, mapAccountToResponse(acc))
	}
	RespondOK(c, response)
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	resp := AccountResponse{
		ID:       acc.ID.String(),
		Name:     acc.Name,
		Type:     string(acc.Type),
		CloseDay: acc.CloseDay,
		DueDay:   acc.DueDay,
		Active:   acc.Active,
	}
	if acc.EntityID != nil {
		s := acc.EntityID.String()
		resp.EntityID = &s
	}
	return resp
}
