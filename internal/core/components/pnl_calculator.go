package components

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/smb-finance-ledger/internal/core/service"
	"github.com/smb-finance-ledger/internal/domain/ledger"
)

type PnLCalculatorImpl struct{}

func NewPnLCalculator() service.PnLCalculator {
	return &PnLCalculatorImpl{}
}

// Calculate sums positive contributions as income and negative ones as expenses
func (c *PnLCalculatorImpl) Calculate(entries []*ledger.Entry, scope service.Scope) service.PnLTotals {
	income := decimal.Zero
	expenses := decimal.Zero

	for _, e := range entries {
		contribution := Contribution(e, scope)
		switch {
		case contribution.IsPositive():
			income = income.Add(contribution)
		case contribution.IsNegative():
			expenses = expenses.Add(contribution.Abs())
		}
	}

	return service.PnLTotals{
		Income:   income,
		Expenses: expenses,
		Net:      income.Sub(expenses),
	}
}

// Contribution is what one entry adds to the scope's result. Transfers only
// ever count in the personal scope, and only when flagged.
func Contribution(e *ledger.Entry, scope service.Scope) decimal.Decimal {
	if e.Kind == ledger.KindTransfer {
		if scope == service.ScopePersonal && e.CountsInPersonalResult {
			return e.Amount
		}
		return decimal.Zero
	}

	flag := e.CountsInPersonalResult
	if scope == service.ScopeCompany {
		flag = e.CountsInCompanyResult
	}
	if !flag {
		return decimal.Zero
	}
	return e.Amount
}

func (c *PnLCalculatorImpl) Format(totals service.PnLTotals, currency string) service.FormattedTotals {
	return service.FormattedTotals{
		Income:   FormatAmount(totals.Income, currency),
		Expenses: FormatAmount(totals.Expenses, currency),
		Net:      FormatAmount(totals.Net, currency),
	}
}

// FormatAmount renders amount with the currency's symbol and separators
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
