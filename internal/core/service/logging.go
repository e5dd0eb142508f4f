package service

import (
	"context"
	"log/slog"

	"github.com/smb-finance-ledger/internal/domain/shared"
)

// requestLogger scopes logger to the correlation id and caller on ctx
func requestLogger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := shared.CorrelationIDFrom(ctx); id != "" {
		logger = logger.With("correlation_id", id)
	}
	if caller, ok := shared.CallerFrom(ctx); ok {
		logger = logger.With("user_id", caller.UserID)
	}
	return logger
}
