package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/smb-finance-ledger/internal/config"
)

// NewLogger returns the JSON logger for a ledger process. Every line is
// tagged with the application name and environment.
func NewLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := ParseLevel(cfg.Logging.Level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	logger := slog.New(handler).With("app", cfg.Application.Name, "env", cfg.Application.Env)
	logger.Debug("logger initialized", "level", level.String())
	return logger
}

// ParseLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
