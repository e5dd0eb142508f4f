package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

type ReportServiceImpl struct {
	ledgerRepo ledger.Repository
	calculator PnLCalculator
	currency   string
	logger     *slog.Logger
}

func NewReportService(ledgerRepo ledger.Repository, calculator PnLCalculator, currency string, logger *slog.Logger) ReportService {
	return &ReportServiceImpl{
		ledgerRepo: ledgerRepo,
		calculator: calculator,
		currency:   currency,
		logger:     logger,
	}
}

// ProfitAndLoss folds every entry dated within [from, to] for the scope
func (s *ReportServiceImpl) ProfitAndLoss(ctx context.Context, caller shared.Caller, scope Scope, from, to time.Time) (*PnLReport, error) {
	var verr shared.ValidationError
	if !scope.Valid() {
		verr.Add("scope", "must be company or personal")
	}
	if from.IsZero() {
		verr.Add("from", "is required")
	}
	if to.IsZero() {
		verr.Add("to", "is required")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		verr.Add("to", "must not be before from")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.ListForPeriod(ctx, caller.TenantID, from, to)
	if err != nil {
		return nil, err
	}

	totals := s.calculator.Calculate(entries, scope)
	requestLogger(ctx, s.logger).Debug("P&L computed", "scope", scope, "entries", len(entries), "net", totals.Net.String())

	return &PnLReport{
		Scope:      scope,
		From:       from,
		To:         to,
		Currency:   s.currency,
		EntryCount: len(entries),
		PnLTotals:  totals,
		Formatted:  s.calculator.Format(totals, s.currency),
	}, nil
}
