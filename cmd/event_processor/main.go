package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/config"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/data/mongo"
	"github.com/smb-finance-ledger/internal/data/postgres"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/event_processor/consumer"
	"github.com/smb-finance-ledger/internal/event_processor/outbox_poller"
	"github.com/smb-finance-ledger/internal/event_processor/reaper"
	projection "github.com/smb-finance-ledger/internal/event_processor/service"
	"github.com/smb-finance-ledger/internal/logger"
	"github.com/smb-finance-ledger/internal/platform/coordination"
	"github.com/smb-finance-ledger/internal/platform/messaging/consumers"
	"github.com/smb-finance-ledger/internal/platform/messaging/producers"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("event_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Event Processor", "lock_reaper", cfg.LockReaper.Enabled, "dlq_topic", cfg.Kafka.DLQTopic)

	// The gateway owns migrations; the processor only opens the pool
	postgresDB, err := persistence.OpenPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}
	if err := mongo.EnsureIndexes(appCtx, mongoDB.Database()); err != nil {
		log.Error("Failed to create audit indexes", "error", err)
		os.Exit(1)
	}

	clock := shared.SystemClock{}

	// Initialize repositories
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	stagingRepo := postgres.NewStagingRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())

	// Initialize Kafka producers
	eventProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize ledger event producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer is nil when DLQTopic is not configured; its methods are nil-safe

	// Outbox → Kafka
	relay := outbox_poller.NewEventRelay(outboxRepo, eventProducer, log.With("component", "event_relay"))
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, relay, log.With("component", "outbox_poller"))

	// Kafka → MongoDB audit log
	projector := projection.NewAuditProjector(auditRepo, clock, log.With("component", "audit_projector"))
	pooledProjector, err := projection.NewWorkerPoolProjectionService(
		projector,
		projection.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log.With("component", "projection_pool"),
	)
	if err != nil {
		log.Error("Failed to initialize projection worker pool", "error", err)
		os.Exit(1)
	}
	eventHandler := consumer.NewLedgerEventHandler(log.With("component", "ledger_event_handler"), pooledProjector, dlqProducer)
	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)

	// Stale lock reaper, coordinated through Redis so one instance sweeps at a time
	var lockReaper *reaper.LockReaper
	if cfg.LockReaper.Enabled {
		redisClient, err := persistence.NewRedisClient(appCtx, log, &cfg.Redis)
		if err != nil {
			log.Error("Failed to initialize Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		leader := coordination.NewLeaderLock(redisClient, cfg.LockReaper.LeaderKey, instanceToken(), cfg.LockReaper.LeaderTTL, log.With("component", "leader_lock"))
		lockService := service.NewLockService(stagingRepo, clock, log.With("component", "lock_service"))
		lockReaper = reaper.NewLockReaper(&cfg.LockReaper, lockService, leader, log.With("component", "lock_reaper"))
	}

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	if err := kafkaConsumer.Subscribe(appCtx, eventHandler.HandleMessage); err != nil {
		errChan <- fmt.Errorf("kafka consumer error: %w", err)
	}

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	if lockReaper != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lockReaper.Start(appCtx)
		}()
	}

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	log.Info("Shutting down worker pool", "running_workers", pooledProjector.Running())
	pooledProjector.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing ledger event producer", "error", err)
	}

	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Event Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Event Processor shutdown completed with errors")
	} else {
		log.Info("Event Processor shutdown completed successfully")
	}
}

// instanceToken identifies this process as the leader lock holder
func instanceToken() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "event-processor"
	}
	return host + "-" + uuid.NewString()
}
