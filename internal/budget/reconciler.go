// Package budget holds the pure admission and totals computation for the
// ledger. The budget is always an explicit parameter so the functions can be
// exercised in isolation.
package budget

import (
	"gagyebu/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultBudget is the fixed session budget in whole currency units.
var DefaultBudget = decimal.NewFromInt(500000)

// Totals returns the sum of all record amounts and the remaining budget.
func Totals(records []*domain.Expense, budget decimal.Decimal) (spent, remaining decimal.Decimal) {
	spent = decimal.Zero
	for _, e := range records {
		spent = spent.Add(e.Amount)
	}
	return spent, budget.Sub(spent)
}

// Admit decides whether a proposed expense may be added to the ledger as it
// stands. The decision uses the snapshot before the add; an amount exactly
// equal to the remaining budget is admitted.
func Admit(records []*domain.Expense, budget, proposed decimal.Decimal) error {
	if proposed.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	_, remaining := Totals(records, budget)
	if proposed.GreaterThan(remaining) {
		return domain.ErrBudgetExceeded
	}
	return nil
}

// OverBudget reports whether spending already exceeds the budget. This can
// only happen through writes that bypassed Admit, e.g. another writer on the
// synced backend; it is surfaced as a standing warning, not an error.
func OverBudget(records []*domain.Expense, budget decimal.Decimal) bool {
	_, remaining := Totals(records, budget)
	return remaining.IsNegative()
}
