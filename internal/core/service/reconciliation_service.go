package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/smb-finance-ledger/internal/domain/invoice"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/shared"
	"github.com/smb-finance-ledger/internal/platform/persistence"
)

type ReconciliationServiceImpl struct {
	txManager     persistence.TxManager
	invoiceRepo   invoice.Repository
	ledgerRepo    ledger.Repository
	matcher       ReconciliationMatcher
	outboxManager OutboxManager
	policy        ReconciliationPolicy
	clock         shared.Clock
	logger        *slog.Logger
}

func NewReconciliationService(
	txManager persistence.TxManager,
	invoiceRepo invoice.Repository,
	ledgerRepo ledger.Repository,
	matcher ReconciliationMatcher,
	outboxManager OutboxManager,
	policy ReconciliationPolicy,
	clock shared.Clock,
	logger *slog.Logger,
) ReconciliationService {
	return &ReconciliationServiceImpl{
		txManager:     txManager,
		invoiceRepo:   invoiceRepo,
		ledgerRepo:    ledgerRepo,
		matcher:       matcher,
		outboxManager: outboxManager,
		policy:        policy,
		clock:         clock,
		logger:        logger,
	}
}

// AutoReconcile looks for the bank payment that settled the invoice and binds
// it. The invoice row stays locked for the whole attempt, so two concurrent
// calls cannot both bind a payment. A paid invoice, or one with nothing to
// pay, is returned as is.
func (s *ReconciliationServiceImpl) AutoReconcile(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID, toleranceCents *int64) (MatchResult, error) {
	logger := requestLogger(ctx, s.logger).With("invoice_id", invoiceID.String())

	cents := s.policy.DefaultToleranceCents
	if toleranceCents != nil {
		cents = *toleranceCents
	}
	if cents < 0 {
		return MatchResult{}, shared.NewValidationError("tolerance_cents", "must not be negative")
	}
	tolerance := ToleranceFromCents(cents)

	result := MatchResult{InvoiceID: invoiceID}
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		invoiceRepoTx := s.invoiceRepo.WithTx(tx)
		ledgerRepoTx := s.ledgerRepo.WithTx(tx)

		inv, err := invoiceRepoTx.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.OwnerID != caller.TenantID {
			return shared.ErrOwnershipViolation{Resource: shared.ResourceInvoice, ID: invoiceID}
		}

		if inv.IsPaid() || inv.MatchedEntryID != nil {
			result.Matched = inv.MatchedEntryID != nil
			result.EntryID = inv.MatchedEntryID
			result.AlreadyReconciled = true
			return nil
		}

		candidates, err := ledgerRepoTx.FindReconciliationCandidates(ctx, s.candidateQuery(inv, tolerance))
		if err != nil {
			return err
		}

		match := s.matcher.SelectMatch(inv, candidates, s.policy, tolerance)
		if match == nil {
			logger.Info("No payment matched invoice", "candidates", len(candidates))
			return nil
		}

		payment := invoice.Payment{
			Amount:         inv.TotalAmount,
			PaidAt:         match.Date,
			PayerAccountID: match.AccountID,
			EntryID:        match.ID,
		}
		if err = invoiceRepoTx.MarkPaid(ctx, inv.ID, inv.Version, payment); err != nil {
			return err
		}
		if err = ledgerRepoTx.LinkInvoice(ctx, match.ID, inv.ID); err != nil {
			return err
		}

		payload := invoiceReconciledPayload{
			InvoiceID:      inv.ID,
			EntryID:        match.ID,
			PaidAmount:     payment.Amount,
			PaidAt:         payment.PaidAt,
			PayerAccountID: payment.PayerAccountID,
			Tolerance:      tolerance,
		}
		if err = s.outboxManager.Record(ctx, tx, caller, shared.EventInvoiceReconciled, shared.ResourceInvoice, inv.ID, payload); err != nil {
			return err
		}

		entryID := match.ID
		result.Matched = true
		result.EntryID = &entryID
		return nil
	})
	if err != nil {
		logger.Warn("Invoice reconciliation failed", "error", err)
		return MatchResult{}, err
	}

	if result.Matched && !result.AlreadyReconciled {
		logger.Info("Invoice reconciled", "entry_id", result.EntryID.String())
	}
	return result, nil
}

func (s *ReconciliationServiceImpl) GetInvoice(ctx context.Context, caller shared.Caller, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.OwnerID != caller.TenantID {
		return nil, shared.ErrOwnershipViolation{Resource: shared.ResourceInvoice, ID: invoiceID}
	}
	inv.Status = inv.DerivedStatus(s.clock.Now())
	return inv, nil
}

func (s *ReconciliationServiceImpl) candidateQuery(inv *invoice.Invoice, tolerance decimal.Decimal) ledger.CandidateQuery {
	q := ledger.CandidateQuery{
		OwnerID:           inv.OwnerID,
		Kinds:             s.policy.CandidateKinds,
		From:              inv.DueDate.AddDate(0, 0, -s.policy.WindowDays),
		To:                inv.DueDate.AddDate(0, 0, s.policy.WindowDays),
		Anchor:            inv.DueDate,
		Target:            inv.TotalAmount.Abs(),
		Tolerance:         tolerance,
		PayerAccountTypes: s.policy.PayerAccountTypes,
		Limit:             s.policy.MaxCandidates,
	}
	if s.policy.ExcludeInvoiceAccount {
		accountID := inv.AccountID
		q.ExcludeAccountID = &accountID
	}
	return q
}
