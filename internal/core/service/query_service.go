package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/domain/account"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/domain/staging"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type QueryServiceImpl struct {
	stagingRepo staging.Repository
	ledgerRepo  ledger.Repository
	accountRepo account.Repository
	logger      *slog.Logger
}

func NewQueryService(stagingRepo staging.Repository, ledgerRepo ledger.Repository, accountRepo account.Repository, logger *slog.Logger) QueryService {
	return &QueryServiceImpl{
		stagingRepo: stagingRepo,
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// ListStaging returns the caller's pending and skipped rows, newest first
func (s *QueryServiceImpl) ListStaging(ctx context.Context, caller shared.Caller, limit, offset int) ([]*staging.Row, int64, error) {
	limit, offset = normalizePage(limit, offset)

	rows, err := s.stagingRepo.ListOpen(ctx, caller.TenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.stagingRepo.CountOpen(ctx, caller.TenantID)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *QueryServiceImpl) GetEntry(ctx context.Context, caller shared.Caller, entryID uuid.UUID) (*ledger.Entry, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.OwnerID != caller.TenantID {
		return nil, shared.ErrOwnershipViolation{Resource: shared.ResourceLedgerEntry, ID: entryID}
	}
	return entry, nil
}

// ListAccounts returns the caller's accounts, used to label staging rows and pick transfer legs
func (s *QueryServiceImpl) ListAccounts(ctx context.Context, caller shared.Caller) ([]*account.Account, error) {
	accounts, err := s.accountRepo.ListByOwner(ctx, caller.TenantID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []*account.Account{}
	}
	return accounts, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
