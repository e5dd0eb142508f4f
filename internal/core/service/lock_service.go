package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
)

type LockServiceImpl struct {
	stagingRepo staging.Repository
	clock       shared.Clock
	logger      *slog.Logger
}

func NewLockService(stagingRepo staging.Repository, clock shared.Clock, logger *slog.Logger) LockService {
	return &LockServiceImpl{
		stagingRepo: stagingRepo,
		clock:       clock,
		logger:      logger,
	}
}

// Acquire leases the row to the caller. It never blocks: a lease held by
// someone else, or a row that is no longer open, yields Changed=false with
// the row's current holder and version.
func (s *LockServiceImpl) Acquire(ctx context.Context, caller shared.Caller, rowID uuid.UUID) (LockState, error) {
	logger := requestLogger(ctx, s.logger)

	row, err := s.ownedRow(ctx, caller, rowID)
	if err != nil {
		return LockState{}, err
	}
	if !row.Status.Open() {
		logger.Info("Lock refused on closed staging row", "row_id", rowID.String(), "status", row.Status)
		return currentLockState(row), nil
	}

	version, ok, err := s.stagingRepo.AcquireLock(ctx, rowID, caller.TenantID, caller.UserID, s.clock.Now())
	if err != nil {
		return LockState{}, err
	}
	if !ok {
		logger.Info("Staging row locked by another user", "row_id", rowID.String(), "user_id", caller.UserID)
		return s.reloadLockState(ctx, row)
	}

	logger.Debug("Staging row locked", "row_id", rowID.String(), "user_id", caller.UserID, "version", version)
	return LockState{Changed: true, LockOwner: caller.UserID, Version: version}, nil
}

// Release drops the caller's lease. Releasing a lease the caller does not
// hold changes nothing and reports the row as it is.
func (s *LockServiceImpl) Release(ctx context.Context, caller shared.Caller, rowID uuid.UUID) (LockState, error) {
	row, err := s.ownedRow(ctx, caller, rowID)
	if err != nil {
		return LockState{}, err
	}

	version, ok, err := s.stagingRepo.ReleaseLock(ctx, rowID, caller.UserID, s.clock.Now())
	if err != nil {
		return LockState{}, err
	}
	if !ok {
		return s.reloadLockState(ctx, row)
	}

	requestLogger(ctx, s.logger).Debug("Staging row unlocked", "row_id", rowID.String(), "version", version)
	return LockState{Changed: true, Version: version}, nil
}

func (s *LockServiceImpl) ReapStale(ctx context.Context, maxAge time.Duration, tenantID *uuid.UUID) (int64, error) {
	if maxAge <= 0 {
		return 0, shared.NewValidationError("max_age", "must be greater than zero")
	}

	now := s.clock.Now()
	count, err := s.stagingRepo.ReapStale(ctx, now.Add(-maxAge), tenantID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to reap stale locks: %w", err)
	}

	if count > 0 {
		requestLogger(ctx, s.logger).Info("Released stale staging locks", "count", count, "max_age", maxAge.String())
	}
	return count, nil
}

// reloadLockState reads the row again after a refused update, since the
// lease may have moved between the first read and the UPDATE.
func (s *LockServiceImpl) reloadLockState(ctx context.Context, fallback *staging.Row) (LockState, error) {
	row, err := s.stagingRepo.GetByID(ctx, fallback.ID)
	if err != nil {
		return LockState{}, err
	}
	return currentLockState(row), nil
}

func currentLockState(row *staging.Row) LockState {
	state := LockState{Version: row.Version}
	if row.IsLocked() {
		state.LockOwner = *row.LockOwner
	}
	return state
}

func (s *LockServiceImpl) ownedRow(ctx context.Context, caller shared.Caller, rowID uuid.UUID) (*staging.Row, error) {
	row, err := s.stagingRepo.GetByID(ctx, rowID)
	if err != nil {
		return nil, err
	}
	if row.OwnerID != caller.TenantID {
		return nil, shared.ErrOwnershipViolation{Resource: shared.ResourceStagingRow, ID: rowID}
	}
	return row, nil
}
