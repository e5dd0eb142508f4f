package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/smb-finance-ledger/internal/domain/outbox"
)

// WorkerPoolProjectionService bounds how many projections run at once
type WorkerPoolProjectionService struct {
	baseService ProjectionService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolProjectionService(
	baseService ProjectionService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProjectionService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &WorkerPoolProjectionService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Project runs the projection on a pooled worker and waits for its result
// so the caller only commits the offset after the write succeeded.
func (s *WorkerPoolProjectionService) Project(ctx context.Context, event *outbox.Event) error {
	resultChan := make(chan error, 1)
	eventCopy := *event

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.Project(ctx, &eventCopy)
	})
	if err != nil {
		s.logger.Error("Failed to submit projection to worker pool",
			"event_id", event.EventID,
			"error", err,
		)
		return fmt.Errorf("failed to submit event %d to worker pool: %w", event.EventID, err)
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolProjectionService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolProjectionService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolProjectionService) Capacity() int {
	return s.pool.Cap()
}
