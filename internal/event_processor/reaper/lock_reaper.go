// Package reaper periodically releases staging row leases whose holder went away.
package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/smb-finance-ledger/internal/config"
	"github.com/smb-finance-ledger/internal/core/service"
)

// Leader elects the replica that runs a sweep
type Leader interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type LockReaper struct {
	locks    service.LockService
	leader   Leader
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
}

func NewLockReaper(cfg *config.LockReaperConfig, locks service.LockService, leader Leader, logger *slog.Logger) *LockReaper {
	return &LockReaper{
		locks:    locks,
		leader:   leader,
		interval: cfg.Interval,
		maxAge:   cfg.MaxAge,
		logger:   logger,
	}
}

// Start sweeps on every tick until ctx is canceled
func (r *LockReaper) Start(ctx context.Context) {
	r.logger.Info("Starting lock reaper", "interval", r.interval.String(), "max_age", r.maxAge.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Lock reaper stopping due to context cancellation")
			return
		case <-ticker.C:
			if _, err := r.sweep(ctx); err != nil {
				r.logger.Error("Lock reaper sweep failed", "error", err)
			}
		}
	}
}

// sweep releases stale leases across all tenants when this replica leads
func (r *LockReaper) sweep(ctx context.Context) (int64, error) {
	leading, err := r.leader.TryAcquire(ctx)
	if err != nil {
		return 0, err
	}
	if !leading {
		return 0, nil
	}
	defer func() {
		if err := r.leader.Release(ctx); err != nil {
			r.logger.Warn("Failed to release reaper leadership", "error", err)
		}
	}()

	return r.locks.ReapStale(ctx, r.maxAge, nil)
}
