package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/domain/entity"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/ownership"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type approvalFixture struct {
	tx       *fakeTxManager
	staging  *MockStagingRepository
	entities *MockEntityRepository
	checker  *MockOwnershipChecker
	writer   *MockLedgerWriter
	outbox   *MockOutboxManager
	svc      ApprovalService
}

func newApprovalFixture() *approvalFixture {
	f := &approvalFixture{
		tx:       &fakeTxManager{},
		staging:  new(MockStagingRepository),
		entities: new(MockEntityRepository),
		checker:  new(MockOwnershipChecker),
		writer:   new(MockLedgerWriter),
		outbox:   new(MockOutboxManager),
	}
	f.staging.On("WithTx", mock.Anything).Return(f.staging)
	f.entities.On("WithTx", mock.Anything).Return(f.entities)
	f.checker.On("WithTx", mock.Anything).Return(f.checker)
	f.svc = NewApprovalService(f.tx, f.staging, f.entities, f.checker, f.writer, f.outbox, shared.FixedClock{At: testNow}, newTestLogger())
	return f
}

func TestApprovalService_Approve(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	caller := shared.Caller{TenantID: tenant, UserID: "alice"}
	categoryID := uuid.New()

	companyEntity := func() *entity.Entity {
		return &entity.Entity{ID: uuid.New(), OwnerID: tenant, Name: "ACME", Type: entity.TypeCompany, Active: true}
	}

	t.Run("posts entry, closes row and records event", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		holder := "alice"
		row.LockOwner = &holder
		ent := companyEntity()
		entry := &ledger.Entry{ID: uuid.New(), OwnerID: tenant, Amount: row.Amount, Kind: ledger.KindExpense}

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)
		f.entities.On("GetByID", ctx, ent.ID).Return(ent, nil)
		f.checker.On("Check", ctx, tenant, []ownership.Ref{{Resource: ownership.Category, ID: categoryID}}).Return(nil)
		f.writer.On("Write", ctx, mock.Anything, mock.MatchedBy(func(in WriteInput) bool {
			return in.Row == row && in.Entity == ent && *in.CategoryID == categoryID
		})).Return(entry, nil)
		f.staging.On("MarkApproved", ctx, row.ID, int64(3), entry.ID, testNow).Return(nil)
		f.outbox.On("Record", ctx, mock.Anything, caller, shared.EventLedgerEntryPosted, shared.ResourceLedgerEntry, entry.ID, mock.Anything).Return(nil)

		entryID, err := f.svc.Approve(ctx, caller, ApproveCommand{RowID: row.ID, EntityID: ent.ID, CategoryID: categoryID})
		require.NoError(t, err)
		assert.Equal(t, entry.ID, entryID)
		assert.Equal(t, 1, f.tx.calls)
		f.staging.AssertExpectations(t)
		f.outbox.AssertExpectations(t)
	})

	t.Run("approved row cannot be approved again", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		row.Status = staging.StatusApproved

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)

		_, err := f.svc.Approve(ctx, caller, ApproveCommand{RowID: row.ID, EntityID: uuid.New(), CategoryID: categoryID})
		assert.ErrorIs(t, err, shared.ErrInvalidStateTransition{RowID: row.ID})
		f.writer.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("row locked by another user", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		holder := "bob"
		row.LockOwner = &holder

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)

		_, err := f.svc.Approve(ctx, caller, ApproveCommand{RowID: row.ID, EntityID: uuid.New(), CategoryID: categoryID})
		var conflict shared.ErrLockConflict
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "bob", conflict.Holder)
		assert.True(t, shared.IsRetryable(err))
	})

	t.Run("expected version differs", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		stale := int64(2)

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)

		_, err := f.svc.Approve(ctx, caller, ApproveCommand{RowID: row.ID, EntityID: uuid.New(), CategoryID: categoryID, ExpectedVersion: &stale})
		assert.ErrorIs(t, err, shared.ErrStaleVersion{Resource: shared.ResourceStagingRow, ID: row.ID})
	})

	t.Run("entity of another tenant", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		ent := companyEntity()
		ent.OwnerID = uuid.New()

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)
		f.entities.On("GetByID", ctx, ent.ID).Return(ent, nil)

		_, err := f.svc.Approve(ctx, caller, ApproveCommand{RowID: row.ID, EntityID: ent.ID, CategoryID: categoryID})
		assert.ErrorIs(t, err, shared.ErrOwnershipViolation{Resource: shared.ResourceEntity, ID: ent.ID})
	})

	t.Run("category of another tenant", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		ent := companyEntity()

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)
		f.entities.On("GetByID", ctx, ent.ID).Return(ent, nil)
		f.checker.On("Check", ctx, tenant, mock.Anything).Return(shared.ErrOwnershipViolation{Resource: "category", ID: categoryID})

		_, err := f.svc.Approve(ctx, caller, ApproveCommand{RowID: row.ID, EntityID: ent.ID, CategoryID: categoryID})
		assert.ErrorIs(t, err, shared.ErrOwnershipViolation{Resource: "category"})
		f.staging.AssertNotCalled(t, "MarkApproved", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("inactive entity", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		ent := companyEntity()
		ent.Active = false

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)
		f.entities.On("GetByID", ctx, ent.ID).Return(ent, nil)

		_, err := f.svc.Approve(ctx, caller, ApproveCommand{RowID: row.ID, EntityID: ent.ID, CategoryID: categoryID})
		assert.ErrorIs(t, err, shared.ValidationError{})
	})

	t.Run("concurrent update surfaces stale version", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		ent := companyEntity()
		entry := &ledger.Entry{ID: uuid.New()}

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)
		f.entities.On("GetByID", ctx, ent.ID).Return(ent, nil)
		f.checker.On("Check", ctx, tenant, mock.Anything).Return(nil)
		f.writer.On("Write", ctx, mock.Anything, mock.Anything).Return(entry, nil)
		f.staging.On("MarkApproved", ctx, row.ID, int64(3), entry.ID, testNow).
			Return(shared.ErrStaleVersion{Resource: shared.ResourceStagingRow, ID: row.ID})

		_, err := f.svc.Approve(ctx, caller, ApproveCommand{RowID: row.ID, EntityID: ent.ID, CategoryID: categoryID})
		assert.ErrorIs(t, err, shared.ErrStaleVersion{})
		f.outbox.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestApprovalService_Reject(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	caller := shared.Caller{TenantID: tenant, UserID: "alice"}

	t.Run("stores reason and records event", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		row.Status = staging.StatusSkipped
		version := int64(3)

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)
		f.staging.On("MarkRejected", ctx, row.ID, int64(3), "duplicate", testNow).Return(nil)
		f.outbox.On("Record", ctx, mock.Anything, caller, shared.EventStagingRejected, shared.ResourceStagingRow, row.ID,
			stagingRejectedPayload{StagingRowID: row.ID, Reason: "duplicate", StagingVer: 4}).Return(nil)

		err := f.svc.Reject(ctx, caller, RejectCommand{RowID: row.ID, Reason: "  duplicate ", ExpectedVersion: &version})
		require.NoError(t, err)
		f.staging.AssertExpectations(t)
		f.outbox.AssertExpectations(t)
	})

	t.Run("reason is required", func(t *testing.T) {
		f := newApprovalFixture()
		err := f.svc.Reject(ctx, caller, RejectCommand{RowID: uuid.New(), Reason: " "})
		assert.ErrorIs(t, err, shared.ValidationError{})
		assert.Equal(t, 0, f.tx.calls)
	})

	t.Run("rejected row is terminal", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		row.Status = staging.StatusRejected

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)

		err := f.svc.Reject(ctx, caller, RejectCommand{RowID: row.ID, Reason: "again"})
		assert.ErrorIs(t, err, shared.ErrInvalidStateTransition{})
	})
}

func TestApprovalService_Skip(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	caller := shared.Caller{TenantID: tenant, UserID: "alice"}

	t.Run("pending row is skipped", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)
		f.staging.On("MarkSkipped", ctx, row.ID, int64(3), testNow).Return(nil)
		f.outbox.On("Record", ctx, mock.Anything, caller, shared.EventStagingSkipped, shared.ResourceStagingRow, row.ID, mock.Anything).Return(nil)

		require.NoError(t, f.svc.Skip(ctx, caller, SkipCommand{RowID: row.ID}))
		f.staging.AssertExpectations(t)
	})

	t.Run("skipped row cannot be skipped again", func(t *testing.T) {
		f := newApprovalFixture()
		row := pendingRow(tenant)
		row.Status = staging.StatusSkipped

		f.staging.On("GetForUpdate", ctx, row.ID).Return(row, nil)

		err := f.svc.Skip(ctx, caller, SkipCommand{RowID: row.ID})
		assert.ErrorIs(t, err, shared.ErrInvalidStateTransition{RowID: row.ID})
	})
}

func TestApprovalService_ApproveAfterLock(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	alice := shared.Caller{TenantID: tenant, UserID: "alice"}
	categoryID := uuid.New()

	setup := func() (*memStagingRepository, *staging.Row, *entity.Entity, ApprovalService) {
		row := pendingRow(tenant)
		repo := newMemStagingRepository(row)
		ent := &entity.Entity{ID: uuid.New(), OwnerID: tenant, Name: "ACME", Type: entity.TypeCompany, Active: true}

		entities := new(MockEntityRepository)
		entities.On("WithTx", mock.Anything).Return(entities)
		entities.On("GetByID", ctx, ent.ID).Return(ent, nil)
		checker := new(MockOwnershipChecker)
		checker.On("WithTx", mock.Anything).Return(checker)
		checker.On("Check", ctx, tenant, mock.Anything).Return(nil)
		writer := new(MockLedgerWriter)
		writer.On("Write", ctx, mock.Anything, mock.Anything).
			Return(&ledger.Entry{ID: uuid.New(), OwnerID: tenant, Amount: row.Amount, Kind: ledger.KindExpense}, nil)
		outbox := new(MockOutboxManager)
		outbox.On("Record", ctx, mock.Anything, alice, shared.EventLedgerEntryPosted, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := NewApprovalService(&fakeTxManager{}, repo, entities, checker, writer, outbox, shared.FixedClock{At: testNow}, newTestLogger())
		return repo, row, ent, svc
	}

	t.Run("version returned by the lock is accepted", func(t *testing.T) {
		repo, row, ent, svc := setup()

		lock, err := lockServiceAt(repo, testNow).Acquire(ctx, alice, row.ID)
		require.NoError(t, err)
		require.True(t, lock.Changed)

		expected := lock.Version
		_, err = svc.Approve(ctx, alice, ApproveCommand{RowID: row.ID, EntityID: ent.ID, CategoryID: categoryID, ExpectedVersion: &expected})
		require.NoError(t, err)

		approved, _ := repo.GetByID(ctx, row.ID)
		assert.Equal(t, staging.StatusApproved, approved.Status)
		assert.False(t, approved.IsLocked())
		assert.Equal(t, expected+1, approved.Version)
	})

	t.Run("version read before the lock is stale", func(t *testing.T) {
		repo, row, ent, svc := setup()
		listed := row.Version

		_, err := lockServiceAt(repo, testNow).Acquire(ctx, alice, row.ID)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, alice, ApproveCommand{RowID: row.ID, EntityID: ent.ID, CategoryID: categoryID, ExpectedVersion: &listed})
		assert.ErrorIs(t, err, shared.ErrStaleVersion{Resource: shared.ResourceStagingRow, ID: row.ID})
	})
}
