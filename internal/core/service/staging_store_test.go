package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
)

// memStagingRepository keeps staging rows in memory and applies the same
// conditions as the UPDATE statements in the postgres repository.
type memStagingRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]staging.Row
}

var _ staging.Repository = (*memStagingRepository)(nil)

func newMemStagingRepository(rows ...*staging.Row) *memStagingRepository {
	repo := &memStagingRepository{rows: make(map[uuid.UUID]staging.Row, len(rows))}
	for _, r := range rows {
		repo.rows[r.ID] = *r
	}
	return repo
}

func (r *memStagingRepository) GetByID(_ context.Context, id uuid.UUID) (*staging.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, shared.ErrNotFound{Resource: shared.ResourceStagingRow, ID: id}
	}
	return &row, nil
}

func (r *memStagingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*staging.Row, error) {
	return r.GetByID(ctx, id)
}

func (r *memStagingRepository) ListOpen(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*staging.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var open []*staging.Row
	for _, row := range r.rows {
		row := row
		if row.OwnerID == ownerID && row.Status.Open() {
			open = append(open, &row)
		}
	}
	if offset >= len(open) {
		return nil, nil
	}
	return open[offset:min(len(open), offset+limit)], nil
}

func (r *memStagingRepository) CountOpen(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	rows, err := r.ListOpen(ctx, ownerID, len(r.rows), 0)
	return int64(len(rows)), err
}

func (r *memStagingRepository) AcquireLock(_ context.Context, id, ownerID uuid.UUID, holder string, now time.Time) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.OwnerID != ownerID || !row.Status.Open() || row.LockedByOther(holder) {
		return 0, false, nil
	}

	row.LockOwner = &holder
	row.LockedAt = &now
	row.Version++
	row.UpdatedAt = now
	r.rows[id] = row
	return row.Version, true, nil
}

func (r *memStagingRepository) ReleaseLock(_ context.Context, id uuid.UUID, holder string, now time.Time) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || !row.IsLocked() || *row.LockOwner != holder {
		return 0, false, nil
	}

	clearLock(&row, now)
	r.rows[id] = row
	return row.Version, true, nil
}

func (r *memStagingRepository) ReapStale(_ context.Context, cutoff time.Time, ownerID *uuid.UUID, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for id, row := range r.rows {
		if !row.IsLocked() || row.LockedAt == nil || !row.LockedAt.Before(cutoff) {
			continue
		}
		if ownerID != nil && row.OwnerID != *ownerID {
			continue
		}
		clearLock(&row, now)
		r.rows[id] = row
		count++
	}
	return count, nil
}

func (r *memStagingRepository) MarkApproved(_ context.Context, id uuid.UUID, version int64, entryID uuid.UUID, now time.Time) error {
	return r.decide(id, version, now, func(row *staging.Row) bool {
		if !row.Status.Open() {
			return false
		}
		row.Status = staging.StatusApproved
		row.LedgerEntryID = &entryID
		return true
	})
}

func (r *memStagingRepository) MarkRejected(_ context.Context, id uuid.UUID, version int64, reason string, now time.Time) error {
	return r.decide(id, version, now, func(row *staging.Row) bool {
		if !row.Status.Open() {
			return false
		}
		row.Status = staging.StatusRejected
		row.RejectionReason = &reason
		return true
	})
}

func (r *memStagingRepository) MarkSkipped(_ context.Context, id uuid.UUID, version int64, now time.Time) error {
	return r.decide(id, version, now, func(row *staging.Row) bool {
		if row.Status != staging.StatusPending {
			return false
		}
		row.Status = staging.StatusSkipped
		return true
	})
}

func (r *memStagingRepository) WithTx(pgx.Tx) staging.Repository {
	return r
}

func (r *memStagingRepository) decide(id uuid.UUID, version int64, now time.Time, apply func(*staging.Row) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.Version != version || !apply(&row) {
		return shared.ErrStaleVersion{Resource: shared.ResourceStagingRow, ID: id}
	}
	clearLock(&row, now)
	r.rows[id] = row
	return nil
}

func clearLock(row *staging.Row, now time.Time) {
	row.LockOwner = nil
	row.LockedAt = nil
	row.Version++
	row.UpdatedAt = now
}
