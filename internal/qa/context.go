// Package qa answers free-text financial questions. A router matches
// the question against an ordered list of intent predicates and hands
// it to the first matching handler; handlers phrase their answers from
// a FinancialContext computed over the user's recent data.
package qa

import (
	"sort"
	"time"

	"fintrack/internal/core"
)

// FinancialContext is the summary snapshot the handlers phrase their
// answers from.
type FinancialContext struct {
	TotalIncome      float64
	TotalExpense     float64
	TotalSavings     float64
	MonthIncome      float64
	MonthExpense     float64
	MonthSavings     float64
	AvgDailyExpense  float64
	CategorySpending map[string]float64
	Goals            []core.Goal
}

// BuildContext summarizes recent transactions and active goals.
// AvgDailyExpense approximates a daily burn rate as total/30.
func BuildContext(txns []core.Transaction, goals []core.Goal, now time.Time) FinancialContext {
	fc := FinancialContext{
		CategorySpending: make(map[string]float64),
		Goals:            goals,
	}

	monthStart := core.NewDate(now.Year(), int(now.Month()), 1)
	for _, t := range txns {
		amount := t.Amount.Units()
		inMonth := !t.Date.Before(monthStart.Time)
		switch t.Type {
		case core.Income:
			fc.TotalIncome += amount
			if inMonth {
				fc.MonthIncome += amount
			}
		case core.Expense:
			fc.TotalExpense += amount
			fc.CategorySpending[t.Category] += amount
			if inMonth {
				fc.MonthExpense += amount
			}
		}
	}

	fc.TotalSavings = fc.TotalIncome - fc.TotalExpense
	fc.MonthSavings = fc.MonthIncome - fc.MonthExpense
	if fc.TotalExpense > 0 {
		fc.AvgDailyExpense = fc.TotalExpense / 30
	}
	return fc
}

type categoryAmount struct {
	Category string
	Amount   float64
}

// topCategories returns spending categories ordered by amount
// descending, at most limit entries.
func (fc FinancialContext) topCategories(limit int) []categoryAmount {
	out := make([]categoryAmount, 0, len(fc.CategorySpending))
	for c, a := range fc.CategorySpending {
		out = append(out, categoryAmount{Category: c, Amount: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
