package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smb-finance-ledger/internal/domain/entity"
	"github.com/smb-finance-ledger/internal/domain/ownership"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

type ApprovalServiceImpl struct {
	txManager     persistence.TxManager
	stagingRepo   staging.Repository
	entityRepo    entity.Repository
	checker       ownership.Checker
	ledgerWriter  LedgerWriter
	outboxManager OutboxManager
	clock         shared.Clock
	logger        *slog.Logger
}

func NewApprovalService(
	txManager persistence.TxManager,
	stagingRepo staging.Repository,
	entityRepo entity.Repository,
	checker ownership.Checker,
	ledgerWriter LedgerWriter,
	outboxManager OutboxManager,
	clock shared.Clock,
	logger *slog.Logger,
) ApprovalService {
	return &ApprovalServiceImpl{
		txManager:     txManager,
		stagingRepo:   stagingRepo,
		entityRepo:    entityRepo,
		checker:       checker,
		ledgerWriter:  ledgerWriter,
		outboxManager: outboxManager,
		clock:         clock,
		logger:        logger,
	}
}

// Approve posts the staging row to the ledger. The entry insert, the row
// update and the outbox event commit or roll back together.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, caller shared.Caller, cmd ApproveCommand) (uuid.UUID, error) {
	logger := requestLogger(ctx, s.logger).With("row_id", cmd.RowID.String())

	var entryID uuid.UUID
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		stagingRepoTx := s.stagingRepo.WithTx(tx)

		row, err := s.decidableRow(ctx, stagingRepoTx, caller, cmd.RowID, cmd.ExpectedVersion, staging.StatusApproved)
		if err != nil {
			return err
		}

		ent, err := s.entityRepo.WithTx(tx).GetByID(ctx, cmd.EntityID)
		if err != nil {
			return err
		}
		if ent.OwnerID != row.OwnerID {
			logger.Warn("Entity from another tenant referenced", "entity_id", cmd.EntityID.String())
			return shared.ErrOwnershipViolation{Resource: shared.ResourceEntity, ID: cmd.EntityID}
		}
		if !ent.Active {
			return shared.NewValidationError("entity_id", "entity is inactive")
		}

		if err = s.checker.WithTx(tx).Check(ctx, row.OwnerID, ownership.Ref{Resource: ownership.Category, ID: cmd.CategoryID}); err != nil {
			return err
		}

		categoryID := cmd.CategoryID
		entry, err := s.ledgerWriter.Write(ctx, tx, WriteInput{
			Row:            row,
			Entity:         ent,
			CategoryID:     &categoryID,
			KindHint:       cmd.KindHint,
			Nature:         cmd.Nature,
			ResultOverride: cmd.ResultOverride,
		})
		if err != nil {
			return err
		}

		if err = stagingRepoTx.MarkApproved(ctx, row.ID, row.Version, entry.ID, s.clock.Now()); err != nil {
			return err
		}

		payload := entryPostedPayload{StagingRowID: row.ID, StagingVer: row.Version + 1, Entry: entry}
		if err = s.outboxManager.Record(ctx, tx, caller, shared.EventLedgerEntryPosted, shared.ResourceLedgerEntry, entry.ID, payload); err != nil {
			return err
		}

		entryID = entry.ID
		return nil
	})
	if err != nil {
		logDecisionFailure(logger, "approve", err)
		return uuid.Nil, err
	}

	logger.Info("Staging row approved", "entry_id", entryID.String())
	return entryID, nil
}

func (s *ApprovalServiceImpl) Reject(ctx context.Context, caller shared.Caller, cmd RejectCommand) error {
	logger := requestLogger(ctx, s.logger).With("row_id", cmd.RowID.String())

	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return shared.NewValidationError("reason", "is required")
	}

	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		stagingRepoTx := s.stagingRepo.WithTx(tx)

		row, err := s.decidableRow(ctx, stagingRepoTx, caller, cmd.RowID, cmd.ExpectedVersion, staging.StatusRejected)
		if err != nil {
			return err
		}

		if err = stagingRepoTx.MarkRejected(ctx, row.ID, row.Version, reason, s.clock.Now()); err != nil {
			return err
		}

		payload := stagingRejectedPayload{StagingRowID: row.ID, Reason: reason, StagingVer: row.Version + 1}
		return s.outboxManager.Record(ctx, tx, caller, shared.EventStagingRejected, shared.ResourceStagingRow, row.ID, payload)
	})
	if err != nil {
		logDecisionFailure(logger, "reject", err)
		return err
	}

	logger.Info("Staging row rejected")
	return nil
}

// Skip defers a pending row. Skipped rows stay open for a later decision.
func (s *ApprovalServiceImpl) Skip(ctx context.Context, caller shared.Caller, cmd SkipCommand) error {
	logger := requestLogger(ctx, s.logger).With("row_id", cmd.RowID.String())

	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		stagingRepoTx := s.stagingRepo.WithTx(tx)

		row, err := s.decidableRow(ctx, stagingRepoTx, caller, cmd.RowID, cmd.ExpectedVersion, staging.StatusSkipped)
		if err != nil {
			return err
		}

		if err = stagingRepoTx.MarkSkipped(ctx, row.ID, row.Version, s.clock.Now()); err != nil {
			return err
		}

		payload := stagingSkippedPayload{StagingRowID: row.ID, StagingVer: row.Version + 1}
		return s.outboxManager.Record(ctx, tx, caller, shared.EventStagingSkipped, shared.ResourceStagingRow, row.ID, payload)
	})
	if err != nil {
		logDecisionFailure(logger, "skip", err)
		return err
	}

	logger.Info("Staging row skipped")
	return nil
}

// decidableRow row-locks the staging row and checks, in order, tenant,
// lifecycle, collaborative lease and optimistic version.
func (s *ApprovalServiceImpl) decidableRow(
	ctx context.Context,
	repo staging.Repository,
	caller shared.Caller,
	rowID uuid.UUID,
	expectedVersion *int64,
	target staging.Status,
) (*staging.Row, error) {
	row, err := repo.GetForUpdate(ctx, rowID)
	if err != nil {
		return nil, err
	}

	if row.OwnerID != caller.TenantID {
		return nil, shared.ErrOwnershipViolation{Resource: shared.ResourceStagingRow, ID: rowID}
	}
	if !row.Status.CanTransitionTo(target) {
		return nil, shared.ErrInvalidStateTransition{RowID: rowID, From: string(row.Status), To: string(target)}
	}
	if row.LockedByOther(caller.UserID) {
		return nil, shared.ErrLockConflict{RowID: rowID, Holder: *row.LockOwner}
	}
	if expectedVersion != nil && *expectedVersion != row.Version {
		return nil, shared.ErrStaleVersion{Resource: shared.ResourceStagingRow, ID: rowID}
	}

	return row, nil
}

func logDecisionFailure(logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrLockConflict{}),
		errors.Is(err, shared.ErrStaleVersion{}),
		errors.Is(err, shared.ErrInvalidStateTransition{}),
		errors.Is(err, shared.ErrOwnershipViolation{}),
		errors.Is(err, shared.ErrNotFound{}),
		errors.Is(err, shared.ValidationError{}):
		logger.Warn("Staging decision refused", "op", op, "reason", err.Error())
	default:
		logger.Error("Staging decision failed", "op", op, "error", err)
	}
}
