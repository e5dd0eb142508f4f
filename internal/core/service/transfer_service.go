package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/ownership"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

type TransferServiceImpl struct {
	txManager     persistence.TxManager
	ledgerRepo    ledger.Repository
	checker       ownership.Checker
	outboxManager OutboxManager
	clock         shared.Clock
	logger        *slog.Logger
}

func NewTransferService(
	txManager persistence.TxManager,
	ledgerRepo ledger.Repository,
	checker ownership.Checker,
	outboxManager OutboxManager,
	clock shared.Clock,
	logger *slog.Logger,
) TransferService {
	return &TransferServiceImpl{
		txManager:     txManager,
		ledgerRepo:    ledgerRepo,
		checker:       checker,
		outboxManager: outboxManager,
		clock:         clock,
		logger:        logger,
	}
}

// CreateTransfer writes the debit and credit legs of a transfer under one
// fresh group id. Legs never count towards the company result.
func (s *TransferServiceImpl) CreateTransfer(ctx context.Context, caller shared.Caller, cmd TransferCommand) (uuid.UUID, error) {
	logger := requestLogger(ctx, s.logger)

	if cmd.Nature == "" {
		cmd.Nature = ledger.NatureInternalMove
	}
	if cmd.PersonalLeg == "" {
		cmd.PersonalLeg = PersonalLegDestination
	}
	if err := validateTransfer(cmd); err != nil {
		return uuid.Nil, err
	}

	groupID := uuid.New()
	srcPersonal, dstPersonal := personalLegFlags(cmd.CountsInPersonalResult, cmd.PersonalLeg)

	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		err := s.checker.WithTx(tx).Check(ctx, caller.TenantID,
			ownership.Ref{Resource: ownership.Account, ID: cmd.SrcAccountID},
			ownership.Ref{Resource: ownership.Entity, ID: cmd.SrcEntityID},
			ownership.Ref{Resource: ownership.Account, ID: cmd.DstAccountID},
			ownership.Ref{Resource: ownership.Entity, ID: cmd.DstEntityID},
		)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		nature := cmd.Nature
		legs := []*ledger.Entry{
			s.leg(caller, cmd, groupID, &nature, cmd.SrcAccountID, cmd.SrcEntityID, cmd.Amount.Neg(), srcPersonal, now),
			s.leg(caller, cmd, groupID, &nature, cmd.DstAccountID, cmd.DstEntityID, cmd.Amount, dstPersonal, now),
		}

		ledgerRepoTx := s.ledgerRepo.WithTx(tx)
		for _, leg := range legs {
			if err = ledgerRepoTx.Create(ctx, leg); err != nil {
				return err
			}
		}

		payload := transferCreatedPayload{
			TransferGroupID: groupID,
			Amount:          cmd.Amount,
			Date:            cmd.Date,
			Nature:          cmd.Nature,
			Legs:            legs,
		}
		return s.outboxManager.Record(ctx, tx, caller, shared.EventTransferCreated, shared.ResourceTransfer, groupID, payload)
	})
	if err != nil {
		logger.Warn("Transfer not created", "error", err)
		return uuid.Nil, err
	}

	logger.Info("Transfer created",
		"transfer_group_id", groupID.String(),
		"src_account_id", cmd.SrcAccountID.String(),
		"dst_account_id", cmd.DstAccountID.String(),
		"amount", cmd.Amount.String(),
	)
	return groupID, nil
}

func (s *TransferServiceImpl) GetTransfer(ctx context.Context, caller shared.Caller, groupID uuid.UUID) ([]*ledger.Entry, error) {
	legs, err := s.ledgerRepo.GetByTransferGroup(ctx, caller.TenantID, groupID)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, shared.ErrNotFound{Resource: shared.ResourceTransfer, ID: groupID}
	}
	return legs, nil
}

func (s *TransferServiceImpl) leg(
	caller shared.Caller,
	cmd TransferCommand,
	groupID uuid.UUID,
	nature *ledger.Nature,
	accountID, entityID uuid.UUID,
	amount decimal.Decimal,
	personal bool,
	now time.Time,
) *ledger.Entry {
	return &ledger.Entry{
		ID:                     uuid.New(),
		OwnerID:                caller.TenantID,
		AccountID:              accountID,
		EntityID:               entityID,
		Date:                   cmd.Date,
		Description:            cmd.Description,
		Amount:                 amount,
		Kind:                   ledger.KindTransfer,
		EconomicNature:         nature,
		TransferGroupID:        &groupID,
		CountsInCompanyResult:  false,
		CountsInPersonalResult: personal,
		CreatedAt:              now,
	}
}

func validateTransfer(cmd TransferCommand) error {
	var verr shared.ValidationError
	if cmd.SrcAccountID == cmd.DstAccountID {
		verr.Add("dst_account_id", "must differ from the source account")
	}
	if !cmd.Amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	} else if !ledger.AmountFits(cmd.Amount) {
		verr.Add("amount", "must have at most 2 decimal places and not exceed 999999999999.99")
	}
	if cmd.Date.IsZero() {
		verr.Add("date", "is required")
	}
	if strings.TrimSpace(cmd.Description) == "" {
		verr.Add("description", "is required")
	}
	if !cmd.Nature.Valid() {
		verr.Add("economic_nature", "is not a known nature")
	}
	if !cmd.PersonalLeg.Valid() {
		verr.Add("personal_leg", "must be destination, source or both")
	}
	return verr.OrNil()
}

// personalLegFlags returns the personal result flag of the source and destination legs
func personalLegFlags(countsPersonal bool, leg PersonalLeg) (bool, bool) {
	if !countsPersonal {
		return false, false
	}
	switch leg {
	case PersonalLegSource:
		return true, false
	case PersonalLegBoth:
		return true, true
	default:
		return false, true
	}
}
