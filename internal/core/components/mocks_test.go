package components

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/domain/entity"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/outbox"
	"github.com/smb-finance-ledger/internal/domain/ownership"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
	"github.com/stretchr/testify/mock"
)

type fakeTxManager struct{}

func (fakeTxManager) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) Create(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) GetByTransferGroup(ctx context.Context, ownerID, groupID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, ownerID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) ListForPeriod(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*ledger.Entry, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) FindReconciliationCandidates(ctx context.Context, q ledger.CandidateQuery) ([]*ledger.Entry, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) LinkInvoice(ctx context.Context, entryID, invoiceID uuid.UUID) error {
	args := m.Called(ctx, entryID, invoiceID)
	return args.Error(0)
}

func (m *MockLedgerRepo) WithTx(tx pgx.Tx) ledger.Repository {
	args := m.Called(tx)
	return args.Get(0).(ledger.Repository)
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

type MockStagingRepo struct {
	mock.Mock
}

func (m *MockStagingRepo) GetByID(ctx context.Context, id uuid.UUID) (*staging.Row, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staging.Row), args.Error(1)
}

func (m *MockStagingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*staging.Row, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staging.Row), args.Error(1)
}

func (m *MockStagingRepo) ListOpen(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*staging.Row, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	return args.Get(0).([]*staging.Row), args.Error(1)
}

func (m *MockStagingRepo) CountOpen(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStagingRepo) AcquireLock(ctx context.Context, id, ownerID uuid.UUID, holder string, now time.Time) (int64, bool, error) {
	args := m.Called(ctx, id, ownerID, holder, now)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockStagingRepo) ReleaseLock(ctx context.Context, id uuid.UUID, holder string, now time.Time) (int64, bool, error) {
	args := m.Called(ctx, id, holder, now)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockStagingRepo) ReapStale(ctx context.Context, cutoff time.Time, ownerID *uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(ctx, cutoff, ownerID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStagingRepo) MarkApproved(ctx context.Context, id uuid.UUID, version int64, entryID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, id, version, entryID, now)
	return args.Error(0)
}

func (m *MockStagingRepo) MarkRejected(ctx context.Context, id uuid.UUID, version int64, reason string, now time.Time) error {
	args := m.Called(ctx, id, version, reason, now)
	return args.Error(0)
}

func (m *MockStagingRepo) MarkSkipped(ctx context.Context, id uuid.UUID, version int64, now time.Time) error {
	args := m.Called(ctx, id, version, now)
	return args.Error(0)
}

func (m *MockStagingRepo) WithTx(tx pgx.Tx) staging.Repository {
	args := m.Called(tx)
	return args.Get(0).(staging.Repository)
}

type MockEntityRepo struct {
	mock.Mock
}

func (m *MockEntityRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Entity), args.Error(1)
}

func (m *MockEntityRepo) Usage(ctx context.Context, id uuid.UUID) (shared.EntityUsage, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(shared.EntityUsage), args.Error(1)
}

func (m *MockEntityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEntityRepo) WithTx(tx pgx.Tx) entity.Repository {
	args := m.Called(tx)
	return args.Get(0).(entity.Repository)
}

type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) Check(ctx context.Context, tenantID uuid.UUID, refs ...ownership.Ref) error {
	args := m.Called(ctx, tenantID, refs)
	return args.Error(0)
}

func (m *MockChecker) WithTx(tx pgx.Tx) ownership.Checker {
	args := m.Called(tx)
	return args.Get(0).(ownership.Checker)
}
