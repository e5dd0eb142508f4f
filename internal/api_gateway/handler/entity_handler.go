package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/core/service"
)

type EntityHandler struct {
	entityService service.EntityService
	logger        *slog.Logger
}

func NewEntityHandler(logger *slog.Logger, entityService service.EntityService) *EntityHandler {
	return &EntityHandler{
		entityService: entityService,
		logger:        logger,
	}
}

// Usage counts what still references an entity
func (h *EntityHandler) Usage(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	entityID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	usage, err := h.entityService.Usage(c.Request.Context(), caller, entityID)
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, usage)
}

// Delete removes an unreferenced entity; a referenced one answers 409 with its usage
func (h *EntityHandler) Delete(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	entityID, ok := pathUUID(c, h.logger, "id")
	if !ok {
		return
	}

	if err := h.entityService.Delete(c.Request.Context(), caller, entityID); err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}
