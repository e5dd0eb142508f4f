package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/api_gateway/handler"
	"github.com/smb-finance-ledger/internal/api_gateway/middleware"
	"github.com/smb-finance-ledger/internal/config"
	"github.com/smb-finance-ledger/internal/core/components"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/ulule/limiter/v3"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger // For structured logging
	httpServer      *http.Server // Underlying HTTP server
	httpRouter      *gin.Engine  // Gin router instance
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, services *components.Services, clock shared.Clock) (*Server, error) {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := handler.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register request validators: %w", err)
	}

	var rateLimiter *limiter.Limiter
	if cfg.RateLimit.Enabled {
		var err error
		rateLimiter, err = middleware.NewLimiter(cfg.RateLimit.Rate)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
	}

	httpRouter := gin.New()

	h := handlers{
		account:  handler.NewAccountHandler(log, services.Query),
		staging:  handler.NewStagingHandler(log, services.Lock, services.Approval, services.Query),
		transfer: handler.NewTransferHandler(log, services.Transfer),
		invoice:  handler.NewInvoiceHandler(log, services.Reconciliation, clock),
		entity:   handler.NewEntityHandler(log, services.Entity),
		ledger:   handler.NewLedgerHandler(log, services.Query),
		report:   handler.NewReportHandler(log, services.Report),
	}
	if services.Audit != nil {
		h.audit = handler.NewAuditHandler(log, services.Audit)
	}

	setupRouter(log, httpRouter, cfg, rateLimiter, h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = s.httpServer.WriteTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
