package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/api_gateway/middleware"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Retryable bool                `json:"retryable,omitempty"`
	Details   []shared.FieldError `json:"details,omitempty"`
	Usage     *shared.EntityUsage `json:"usage,omitempty"`
}

// MetaInfo represents metadata in a response
type MetaInfo struct {
	Page       int   `json:"page,omitempty"`
	PerPage    int   `json:"per_page,omitempty"`
	TotalPages int64 `json:"total_pages,omitempty"`
	TotalItems int64 `json:"total_items"`
}

// NewResponse creates a new response with data
func NewResponse(data interface{}) *Response {
	return &Response{
		Data: data,
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(info *ErrorInfo) *Response {
	return &Response{
		Error: info,
	}
}

// NewPaginatedResponse creates a new paginated response
func NewPaginatedResponse(data interface{}, page, perPage int, totalItems int64) *Response {
	totalPages := totalItems / int64(perPage)
	if totalItems%int64(perPage) > 0 {
		totalPages++
	}

	return &Response{
		Data: data,
		Meta: &MetaInfo{
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
			TotalItems: totalItems,
		},
	}
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	response := NewResponse(data)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithErrorInfo sends a JSON response with a fully populated error
func RespondWithErrorInfo(c *gin.Context, statusCode int, info *ErrorInfo) {
	response := NewErrorResponse(info)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	RespondWithErrorInfo(c, statusCode, &ErrorInfo{Code: code, Message: message})
}

// RespondWithPaginatedData sends a JSON response with paginated data
func RespondWithPaginatedData(c *gin.Context, statusCode int, data interface{}, page, perPage int, totalItems int64) {
	response := NewPaginatedResponse(data, page, perPage, totalItems)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondNoContent sends a 204 No Content response
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// RespondUnauthorized sends a 401 Unauthorized response with an error
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// RespondNotFound sends a 404 Not Found response with an error
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

// RespondInternalError sends a 500 Internal Server Error response with an error
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}

// RespondWithServiceError maps ledger domain errors to status codes.
// Anything unrecognized is logged and answered with 500.
func RespondWithServiceError(c *gin.Context, logger *slog.Logger, err error) {
	var validationErr shared.ValidationError
	var inUseErr shared.ErrEntityInUse

	switch {
	case errors.As(err, &validationErr):
		RespondWithErrorInfo(c, http.StatusBadRequest, &ErrorInfo{
			Code:    "VALIDATION_ERROR",
			Message: "Request validation failed",
			Details: validationErr.Fields,
		})
	case errors.Is(err, shared.ErrLockConflict{}):
		RespondWithErrorInfo(c, http.StatusConflict, &ErrorInfo{Code: "LOCK_CONFLICT", Message: err.Error(), Retryable: true})
	case errors.Is(err, shared.ErrInvalidStateTransition{}):
		RespondWithError(c, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, shared.ErrStaleVersion{}):
		RespondWithErrorInfo(c, http.StatusConflict, &ErrorInfo{Code: "STALE_VERSION", Message: err.Error(), Retryable: true})
	case errors.Is(err, shared.ErrOwnershipViolation{}):
		RespondWithError(c, http.StatusForbidden, "OWNERSHIP_VIOLATION", err.Error())
	case errors.Is(err, shared.ErrNotFound{}):
		RespondNotFound(c, err.Error())
	case errors.As(err, &inUseErr):
		RespondWithErrorInfo(c, http.StatusConflict, &ErrorInfo{
			Code:    "ENTITY_IN_USE",
			Message: err.Error(),
			Usage:   &inUseErr.Usage,
		})
	default:
		logger.Error("Unhandled service error",
			"correlation_id", middleware.GetCorrelationID(c),
			"path", c.FullPath(),
			"error", err,
		)
		RespondInternalError(c)
	}
}
