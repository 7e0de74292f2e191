package analytics

import (
	"math"
	"sort"
)

// Reference allocation table, percentages of total monthly expense.
// Categories outside the table default to 5%.
var referenceAllocations = map[string]float64{
	"Food":          15,
	"Rent":          30,
	"Bills":         10,
	"Travel":        10,
	"Shopping":      10,
	"Entertainment": 10,
	"Healthcare":    5,
	"Education":     5,
	"Other":         5,
}

const defaultAllocationPct = 5

// BudgetRecommendation compares actual spending in one category
// against the reference allocation.
type BudgetRecommendation struct {
	Category          string
	CurrentPct        float64
	RecommendedPct    float64
	RecommendedAmount float64
	Status            string // over, under, good
}

// RecommendBudget produces one recommendation per spending category,
// ordered by actual spend descending. The 20% tolerance band around
// the reference percentage avoids flagging near-target allocations;
// the bounds are strict, so exactly 1.2x is still "good". A zero
// total signals no data and returns nil.
func RecommendBudget(categoryTotals map[string]float64) []BudgetRecommendation {
	total := 0.0
	for _, v := range categoryTotals {
		total += v
	}
	if total <= 0 {
		return nil
	}

	categories := make([]string, 0, len(categoryTotals))
	for c := range categoryTotals {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categoryTotals[categories[i]] != categoryTotals[categories[j]] {
			return categoryTotals[categories[i]] > categoryTotals[categories[j]]
		}
		return categories[i] < categories[j]
	})

	recs := make([]BudgetRecommendation, 0, len(categories))
	for _, category := range categories {
		recommended, ok := referenceAllocations[category]
		if !ok {
			recommended = defaultAllocationPct
		}
		currentPct := categoryTotals[category] / total * 100

		status := "good"
		switch {
		case currentPct > recommended*1.2:
			status = "over"
		case currentPct < recommended*0.8:
			status = "under"
		}

		recs = append(recs, BudgetRecommendation{
			Category:          category,
			CurrentPct:        round1(currentPct),
			RecommendedPct:    recommended,
			RecommendedAmount: round2(total * recommended / 100),
			Status:            status,
		})
	}
	return recs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
