package analytics

import (
	"math"
	"sort"
)

// ExpenseForecast is a next-month expense prediction with a stability
// score. Confidence is a variance heuristic in [0.5, 1.0], not a
// statistical confidence interval.
type ExpenseForecast struct {
	Value      float64
	Confidence float64
}

// SavingsForecast is a next-month savings prediction.
type SavingsForecast struct {
	Value      float64
	Confidence float64
}

// PredictNextExpense extrapolates the next month's total expense from
// chronologically ordered monthly aggregates.
//
// With fewer than 3 months it degenerates to the mean of whatever is
// available (0 if none). With 3 or more it takes the mean of the last
// 3 months; with 6 or more it additionally adds half the difference
// between the last 3 months' mean and the 3 months before those, so a
// short-term swing moves the forecast but never dominates it. The
// result is floored at 0.
func PredictNextExpense(aggs []MonthlyAggregate) ExpenseForecast {
	n := len(aggs)
	totals := make([]float64, n)
	for i, a := range aggs {
		totals[i] = a.Total
	}

	if n < 3 {
		return ExpenseForecast{Value: mean(totals), Confidence: trailingConfidence(totals)}
	}

	recent := totals[n-3:]
	prediction := mean(recent)
	if n >= 6 {
		older := totals[n-6 : n-3]
		trend := mean(recent) - mean(older)
		prediction += 0.5 * trend
	}
	prediction = math.Max(0, prediction)

	return ExpenseForecast{Value: prediction, Confidence: trailingConfidence(totals)}
}

// trailingConfidence scores stability from the coefficient of
// variation of the trailing 3 months: max(0.5, 1 - std/mean).
func trailingConfidence(totals []float64) float64 {
	recent := totals
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	m := mean(recent)
	if len(recent) < 2 || m <= 0 {
		return 0.5
	}
	return math.Max(0.5, 1-sampleStd(recent)/m)
}

// PredictSavings forecasts next month's savings from income and
// expense monthly aggregates. Monthly savings is income minus expense;
// the prediction is the mean of the last 3 months' savings, or the
// overall mean when fewer months exist. Confidence is fixed at 0.75
// when both income and expense data exist, else the prediction is 0
// with confidence 0.5.
func PredictSavings(income, expense []MonthlyAggregate) SavingsForecast {
	if len(income) == 0 || len(expense) == 0 {
		return SavingsForecast{Value: 0, Confidence: 0.5}
	}

	byPeriod := make(map[string]float64)
	for _, a := range income {
		byPeriod[a.Period] += a.Total
	}
	for _, a := range expense {
		byPeriod[a.Period] -= a.Total
	}

	periods := make([]string, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	savings := make([]float64, len(periods))
	for i, p := range periods {
		savings[i] = byPeriod[p]
	}
	if len(savings) > 3 {
		savings = savings[len(savings)-3:]
	}
	return SavingsForecast{Value: mean(savings), Confidence: 0.75}
}

// EstimateBills averages the amount per category over bill-like
// transactions and returns the expected monthly total plus breakdown.
func EstimateBills(stats map[string]CategoryStatistic) (total float64, breakdown map[string]float64) {
	breakdown = make(map[string]float64, len(stats))
	for category, s := range stats {
		breakdown[category] = s.Mean
		total += s.Mean
	}
	return total, breakdown
}
