package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// Logger logs one line per request. The caller is resolved after the
// handler chain ran, so authenticated requests carry user_id.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		requestLogger := logger
		if correlationID := GetCorrelationID(c); correlationID != "" {
			requestLogger = requestLogger.With("correlation_id", correlationID)
		}
		if caller, ok := shared.CallerFrom(c.Request.Context()); ok {
			requestLogger = requestLogger.With("user_id", caller.UserID)
		}

		if raw != "" {
			path = path + "?" + raw
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if c.Writer.Status() >= 500 {
			requestLogger.Error("HTTP request", attrs...)
			return
		}
		requestLogger.Info("HTTP request", attrs...)
	}
}
