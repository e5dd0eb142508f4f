package components

import (
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/domain/invoice"
	"github.com/smb-finance-ledger/internal/domain/ledger"
)

// ReconciliationMatcherImpl is pure: it only filters and ranks what the
// candidate query already returned.
type ReconciliationMatcherImpl struct {
	logger *slog.Logger
}

func NewReconciliationMatcher(logger *slog.Logger) service.ReconciliationMatcher {
	return &ReconciliationMatcherImpl{logger: logger}
}

// SelectMatch returns the best eligible payment or nil. Ties break on the
// smallest distance to the due date, then the smallest amount difference,
// then the earliest created entry.
func (m *ReconciliationMatcherImpl) SelectMatch(
	inv *invoice.Invoice,
	candidates []*ledger.Entry,
	policy service.ReconciliationPolicy,
	tolerance decimal.Decimal,
) *ledger.Entry {
	target := inv.TotalAmount.Abs()

	eligible := make([]*ledger.Entry, 0, len(candidates))
	for _, c := range candidates {
		if m.eligible(inv, c, policy, target, tolerance) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if da, db := dayDistance(a.Date, inv.DueDate), dayDistance(b.Date, inv.DueDate); da != db {
			return da < db
		}
		diffA := a.Amount.Abs().Sub(target).Abs()
		diffB := b.Amount.Abs().Sub(target).Abs()
		if !diffA.Equal(diffB) {
			return diffA.LessThan(diffB)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	m.logger.Debug("Reconciliation candidates ranked",
		"invoice_id", inv.ID.String(),
		"eligible", len(eligible),
		"best_entry_id", eligible[0].ID.String(),
	)
	return eligible[0]
}

func (m *ReconciliationMatcherImpl) eligible(
	inv *invoice.Invoice,
	e *ledger.Entry,
	policy service.ReconciliationPolicy,
	target, tolerance decimal.Decimal,
) bool {
	if e.OwnerID != inv.OwnerID || e.InvoiceID != nil {
		return false
	}
	if !e.Amount.IsNegative() {
		return false
	}
	if !slices.Contains(policy.CandidateKinds, e.Kind) {
		return false
	}
	if policy.ExcludeInvoiceAccount && e.AccountID == inv.AccountID {
		return false
	}
	if dayDistance(e.Date, inv.DueDate) > policy.WindowDays {
		return false
	}
	return e.Amount.Abs().Sub(target).Abs().LessThanOrEqual(tolerance)
}

// dayDistance counts whole calendar days between a and b
func dayDistance(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	days := int(da.Sub(db).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
