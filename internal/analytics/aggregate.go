// Package analytics turns a raw transaction ledger into monthly
// aggregates, forecasts, anomaly reports, budget recommendations and
// goal projections. Everything here is a pure function over data the
// caller already fetched; no I/O happens in this package.
package analytics

import (
	"math"
	"sort"

	"fintrack/internal/core"
)

// Statistical minimums. Below these the engines report insufficient
// data instead of computing on noise.
const (
	MinForecastTransactions = 3
	MinAnomalyTransactions  = 10
	MinCategoryObservations = 5
)

// MonthlyAggregate is the total for one calendar month. Months with no
// transactions are never synthesized, so a window of the last N entries
// covers the last N active months.
type MonthlyAggregate struct {
	Period string // YYYY-MM
	Total  float64
	Count  int
}

// CategoryStatistic summarizes expense amounts for one category.
// Std is the sample standard deviation (n-1).
type CategoryStatistic struct {
	Mean  float64
	Std   float64
	Count int
	Total float64
}

// MonthlyTotals groups transactions of one type into chronologically
// ordered monthly aggregates.
func MonthlyTotals(txns []core.Transaction, typ core.TransactionType) []MonthlyAggregate {
	byPeriod := make(map[string]*MonthlyAggregate)
	for _, t := range txns {
		if t.Type != typ {
			continue
		}
		period := t.Date.Format("2006-01")
		agg, ok := byPeriod[period]
		if !ok {
			agg = &MonthlyAggregate{Period: period}
			byPeriod[period] = agg
		}
		agg.Total += t.Amount.Units()
		agg.Count++
	}

	out := make([]MonthlyAggregate, 0, len(byPeriod))
	for _, agg := range byPeriod {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// CategoryStatistics computes per-category statistics over expense
// transactions only.
func CategoryStatistics(txns []core.Transaction) map[string]CategoryStatistic {
	amounts := make(map[string][]float64)
	for _, t := range txns {
		if t.Type != core.Expense {
			continue
		}
		amounts[t.Category] = append(amounts[t.Category], t.Amount.Units())
	}

	stats := make(map[string]CategoryStatistic, len(amounts))
	for category, vals := range amounts {
		stats[category] = CategoryStatistic{
			Mean:  mean(vals),
			Std:   sampleStd(vals),
			Count: len(vals),
			Total: sum(vals),
		}
	}
	return stats
}

// CategoryTotals sums expense amounts per category.
func CategoryTotals(txns []core.Transaction) map[string]float64 {
	totals := make(map[string]float64)
	for _, t := range txns {
		if t.Type != core.Expense {
			continue
		}
		totals[t.Category] += t.Amount.Units()
	}
	return totals
}

// CountType counts transactions of the given type.
func CountType(txns []core.Transaction, typ core.TransactionType) int {
	n := 0
	for _, t := range txns {
		if t.Type == typ {
			n++
		}
	}
	return n
}

// SavingsRate returns (income - expense) / income as a percentage,
// floored at 0. Zero income yields 0.
func SavingsRate(income, expense float64) float64 {
	if income <= 0 {
		return 0
	}
	rate := (income - expense) / income * 100
	return math.Max(0, rate)
}

func sum(vals []float64) float64 {
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return s
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return sum(vals) / float64(len(vals))
}

// sampleStd is the n-1 standard deviation. Returns 0 for fewer than
// two values.
func sampleStd(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return 0
	}
	m := mean(vals)
	ss := 0.0
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
