package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/api_gateway/handler"
	"github.com/smb-finance-ledger/internal/api_gateway/middleware"
	"github.com/smb-finance-ledger/internal/config"
	"github.com/ulule/limiter/v3"
)

// handlers groups every resource handler mounted under /api/v1
type handlers struct {
	account  *handler.AccountHandler
	staging  *handler.StagingHandler
	transfer *handler.TransferHandler
	invoice  *handler.InvoiceHandler
	entity   *handler.EntityHandler
	ledger   *handler.LedgerHandler
	report   *handler.ReportHandler
	audit    *handler.AuditHandler // nil when the audit store is not configured
}

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	cfg *config.Config,
	rateLimiter *limiter.Limiter,
	h handlers,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS))
	if rateLimiter != nil {
		r.Use(middleware.RateLimit(logger, rateLimiter))
	}

	// API v1 endpoints, all authenticated
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.Auth))
	{
		// Triage of imported statement lines
		stagingRows := v1.Group("/staging")
		{
			stagingRows.GET("", h.staging.List)
			stagingRows.POST("/locks/reap", h.staging.ReapLocks)
			stagingRows.POST("/:id/lock", h.staging.Lock)
			stagingRows.DELETE("/:id/lock", h.staging.Unlock)
			stagingRows.POST("/:id/approve", h.staging.Approve)
			stagingRows.POST("/:id/reject", h.staging.Reject)
			stagingRows.POST("/:id/skip", h.staging.Skip)
		}

		transfers := v1.Group("/transfers")
		{
			transfers.POST("", h.transfer.Create)
			transfers.GET("/:group_id", h.transfer.Get)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.GET("/:id", h.invoice.Get)
			invoices.POST("/:id/reconcile", h.invoice.Reconcile)
		}

		entities := v1.Group("/entities")
		{
			entities.GET("/:id/usage", h.entity.Usage)
			entities.DELETE("/:id", h.entity.Delete)
		}

		v1.GET("/accounts", h.account.List)
		v1.GET("/ledger/entries/:id", h.ledger.GetEntry)
		v1.GET("/reports/pnl", h.report.PnL)

		if h.audit != nil {
			v1.GET("/audit/:aggregate_id", h.audit.History)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
