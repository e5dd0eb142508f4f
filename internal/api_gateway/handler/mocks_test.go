package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/domain/account"
	"github.com/smb-finance-ledger/internal/domain/audit"
	"github.com/smb-finance-ledger/internal/domain/invoice"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
	"github.com/stretchr/testify/mock"
)

type MockLockService struct {
	mock.Mock
}

func (m *MockLockService) Acquire(ctx context.Context, caller shared.Caller, rowID uuid.UUID) (service.LockState, error) {
	args := m.Called(ctx, caller, rowID)
	return args.Get(0).(service.LockState), args.Error(1)
}

func (m *MockLockService) Release(ctx context.Context, caller shared.Caller, rowID uuid.UUID) (service.LockState, error) {
	args := m.Called(ctx, caller, rowID)
	return args.Get(0).(service.LockState), args.Error(1)
}

func (m *MockLockService) ReapStale(ctx context.Context, maxAge time.Duration, tenantID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, maxAge, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) Approve(ctx context.Context, caller shared.Caller, cmd service.ApproveCommand) (uuid.UUID, error) {
	args := m.Called(ctx, caller, cmd)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockApprovalService) Reject(ctx context.Context, caller shared.Caller, cmd service.RejectCommand) error {
	args := m.Called(ctx, caller, cmd)
	return args.Error(0)
}

func (m *MockApprovalService) Skip(ctx context.Context, caller shared.Caller, cmd service.SkipCommand) error {
	args := m.Called(ctx, caller, cmd)
	return args.Error(0)
}

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) ListStaging(ctx context.Context, caller shared.Caller, limit, offset int) ([]*staging.Row, int64, error) {
	args := m.Called(ctx, caller, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*staging.Row), args.Get(1).(int64), args.Error(2)
}

func (m *MockQueryService) GetEntry(ctx context.Context, caller shared.Caller, entryID uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, caller, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockQueryService) ListAccounts(ctx context.Context, caller shared.Caller) ([]*account.Account, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) CreateTransfer(ctx context.Context, caller shared.Caller, cmd service.TransferCommand) (uuid.UUID, error) {
	args := m.Called(ctx, caller, cmd)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTransferService) GetTransfer(ctx context.Context, caller shared.Caller, groupID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, caller, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) AutoReconcile(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID, toleranceCents *int64) (service.MatchResult, error) {
	args := m.Called(ctx, caller, invoiceID, toleranceCents)
	return args.Get(0).(service.MatchResult), args.Error(1)
}

func (m *MockReconciliationService) GetInvoice(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, caller, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

type MockEntityService struct {
	mock.Mock
}

func (m *MockEntityService) Usage(ctx context.Context, caller shared.Caller, entityID uuid.UUID) (shared.EntityUsage, error) {
	args := m.Called(ctx, caller, entityID)
	return args.Get(0).(shared.EntityUsage), args.Error(1)
}

func (m *MockEntityService) Delete(ctx context.Context, caller shared.Caller, entityID uuid.UUID) error {
	args := m.Called(ctx, caller, entityID)
	return args.Error(0)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ProfitAndLoss(ctx context.Context, caller shared.Caller, scope service.Scope, from, to time.Time) (*service.PnLReport, error) {
	args := m.Called(ctx, caller, scope, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PnLReport), args.Error(1)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) History(ctx context.Context, caller shared.Caller, aggregateID uuid.UUID, limit, offset int) ([]*audit.Record, int64, error) {
	args := m.Called(ctx, caller, aggregateID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*audit.Record), args.Get(1).(int64), args.Error(2)
}
