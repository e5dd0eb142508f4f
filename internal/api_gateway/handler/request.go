package handler

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// callerOrAbort reads the authenticated caller placed by the auth middleware
func callerOrAbort(c *gin.Context) (shared.Caller, bool) {
	caller, ok := shared.CallerFrom(c.Request.Context())
	if !ok {
		RespondUnauthorized(c, "")
		return shared.Caller{}, false
	}
	return caller, true
}

// pathUUID parses a UUID path parameter, answering 400 when it is malformed
func pathUUID(c *gin.Context, logger *slog.Logger, name string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Debug("Invalid path parameter", "param", name, "value", raw)
		RespondWithServiceError(c, logger, shared.NewValidationError(name, "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds and validates a required body
func bindJSON(c *gin.Context, logger *slog.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondWithServiceError(c, logger, bindingError(err))
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty
func bindOptionalJSON(c *gin.Context, logger *slog.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		RespondWithServiceError(c, logger, bindingError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, logger *slog.Logger, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		RespondWithServiceError(c, logger, bindingError(err))
		return false
	}
	return true
}
