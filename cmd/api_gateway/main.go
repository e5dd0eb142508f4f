package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smb-finance-ledger/internal/api_gateway"
	"github.com/smb-finance-ledger/internal/config"
	"github.com/smb-finance-ledger/internal/core/components"
	"github.com/smb-finance-ledger/internal/data/mongo"
	"github.com/smb-finance-ledger/internal/data/postgres"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/logger"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize PostgreSQL, applying pending migrations
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	repos := components.Repositories{
		Accounts:  postgres.NewAccountRepository(log, postgresDB),
		Staging:   postgres.NewStagingRepository(log, postgresDB),
		Ledger:    postgres.NewLedgerRepository(log, postgresDB),
		Invoice:   postgres.NewInvoiceRepository(log, postgresDB),
		Entity:    postgres.NewEntityRepository(log, postgresDB),
		Outbox:    postgres.NewOutboxRepository(log, postgresDB),
		Ownership: postgres.NewOwnershipChecker(log, postgresDB),
	}

	// The audit read model is optional for the gateway
	var mongoDB *persistence.MongoDB
	if cfg.MongoDB.URI != "" {
		mongoDB, err = persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
		if err != nil {
			log.Error("Failed to initialize MongoDB", "error", err)
			os.Exit(1)
		}
		repos.Audit = mongo.NewAuditRepository(log, mongoDB.Database())
	} else {
		log.Warn("MongoDB not configured, audit history endpoint disabled")
	}

	clock := shared.SystemClock{}
	services := components.CreateServices(postgresDB, repos, clock, cfg, log)

	// Initialize REST server
	server, err := api_gateway.NewServer(log, cfg, services, clock)
	if err != nil {
		log.Error("Failed to initialize REST server", "error", err)
		os.Exit(1)
	}
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server before closing the pool it uses
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if mongoDB != nil {
		if err = mongoDB.Close(shutdownCtx); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
		}
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
