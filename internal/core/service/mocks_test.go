package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/smb-finance-ledger/internal/domain/account"
	"github.com/smb-finance-ledger/internal/domain/audit"
	"github.com/smb-finance-ledger/internal/domain/entity"
	"github.com/smb-finance-ledger/internal/domain/invoice"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/ownership"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
	"github.com/stretchr/testify/mock"
)

// fakeTxManager runs fn without a real transaction
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

type MockStagingRepository struct {
	mock.Mock
}

func (m *MockStagingRepository) GetByID(ctx context.Context, id uuid.UUID) (*staging.Row, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staging.Row), args.Error(1)
}

func (m *MockStagingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*staging.Row, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staging.Row), args.Error(1)
}

func (m *MockStagingRepository) ListOpen(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*staging.Row, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*staging.Row), args.Error(1)
}

func (m *MockStagingRepository) CountOpen(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStagingRepository) AcquireLock(ctx context.Context, id, ownerID uuid.UUID, holder string, now time.Time) (int64, bool, error) {
	args := m.Called(ctx, id, ownerID, holder, now)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockStagingRepository) ReleaseLock(ctx context.Context, id uuid.UUID, holder string, now time.Time) (int64, bool, error) {
	args := m.Called(ctx, id, holder, now)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockStagingRepository) ReapStale(ctx context.Context, cutoff time.Time, ownerID *uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(ctx, cutoff, ownerID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStagingRepository) MarkApproved(ctx context.Context, id uuid.UUID, version int64, entryID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, id, version, entryID, now)
	return args.Error(0)
}

func (m *MockStagingRepository) MarkRejected(ctx context.Context, id uuid.UUID, version int64, reason string, now time.Time) error {
	args := m.Called(ctx, id, version, reason, now)
	return args.Error(0)
}

func (m *MockStagingRepository) MarkSkipped(ctx context.Context, id uuid.UUID, version int64, now time.Time) error {
	args := m.Called(ctx, id, version, now)
	return args.Error(0)
}

func (m *MockStagingRepository) WithTx(tx pgx.Tx) staging.Repository {
	args := m.Called(tx)
	return args.Get(0).(staging.Repository)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) account.Repository {
	args := m.Called(tx)
	return args.Get(0).(account.Repository)
}

type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Entity), args.Error(1)
}

func (m *MockEntityRepository) Usage(ctx context.Context, id uuid.UUID) (shared.EntityUsage, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(shared.EntityUsage), args.Error(1)
}

func (m *MockEntityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEntityRepository) WithTx(tx pgx.Tx) entity.Repository {
	args := m.Called(tx)
	return args.Get(0).(entity.Repository)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) GetByTransferGroup(ctx context.Context, ownerID, groupID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, ownerID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) ListForPeriod(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*ledger.Entry, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) FindReconciliationCandidates(ctx context.Context, q ledger.CandidateQuery) ([]*ledger.Entry, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) LinkInvoice(ctx context.Context, entryID, invoiceID uuid.UUID) error {
	args := m.Called(ctx, entryID, invoiceID)
	return args.Error(0)
}

func (m *MockLedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	args := m.Called(tx)
	return args.Get(0).(ledger.Repository)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, version int64, payment invoice.Payment) error {
	args := m.Called(ctx, id, version, payment)
	return args.Error(0)
}

func (m *MockInvoiceRepository) WithTx(tx pgx.Tx) invoice.Repository {
	args := m.Called(tx)
	return args.Get(0).(invoice.Repository)
}

type MockOwnershipChecker struct {
	mock.Mock
}

func (m *MockOwnershipChecker) Check(ctx context.Context, tenantID uuid.UUID, refs ...ownership.Ref) error {
	args := m.Called(ctx, tenantID, refs)
	return args.Error(0)
}

func (m *MockOwnershipChecker) WithTx(tx pgx.Tx) ownership.Checker {
	args := m.Called(tx)
	return args.Get(0).(ownership.Checker)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Upsert(ctx context.Context, record *audit.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByAggregate(ctx context.Context, ownerID, aggregateID uuid.UUID, limit, offset int) ([]*audit.Record, error) {
	args := m.Called(ctx, ownerID, aggregateID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Record), args.Error(1)
}

func (m *MockAuditRepository) CountByAggregate(ctx context.Context, ownerID, aggregateID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID, aggregateID)
	return args.Get(0).(int64), args.Error(1)
}

type MockLedgerWriter struct {
	mock.Mock
}

func (m *MockLedgerWriter) Write(ctx context.Context, tx pgx.Tx, in WriteInput) (*ledger.Entry, error) {
	args := m.Called(ctx, tx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

type MockOutboxManager struct {
	mock.Mock
}

func (m *MockOutboxManager) Record(ctx context.Context, tx pgx.Tx, caller shared.Caller, eventType shared.EventType, aggregateType string, aggregateID uuid.UUID, payload any) error {
	args := m.Called(ctx, tx, caller, eventType, aggregateType, aggregateID, payload)
	return args.Error(0)
}

type MockReconciliationMatcher struct {
	mock.Mock
}

func (m *MockReconciliationMatcher) SelectMatch(inv *invoice.Invoice, candidates []*ledger.Entry, policy ReconciliationPolicy, tolerance decimal.Decimal) *ledger.Entry {
	args := m.Called(inv, candidates, policy, tolerance)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*ledger.Entry)
}

type MockPnLCalculator struct {
	mock.Mock
}

func (m *MockPnLCalculator) Calculate(entries []*ledger.Entry, scope Scope) PnLTotals {
	args := m.Called(entries, scope)
	return args.Get(0).(PnLTotals)
}

func (m *MockPnLCalculator) Format(totals PnLTotals, currency string) FormattedTotals {
	args := m.Called(totals, currency)
	return args.Get(0).(FormattedTotals)
}
