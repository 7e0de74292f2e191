package analytics

import (
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const (
	anomalyStdMultiplier    = 2.5
	maxAnomaliesPerCategory = 3
)

// Anomaly is an expense flagged as an outlier within its category.
type Anomaly struct {
	ID            string
	TransactionID int64
	Date          core.Date
	Category      string
	Merchant      string
	Amount        float64
	CategoryMean  float64
	Threshold     float64
	Reason        string
}

// DetectAnomalies flags expense transactions whose amount exceeds
// their category's mean by more than 2.5 sample standard deviations.
// Categories with fewer than 5 observations are skipped. At most 3
// anomalies per category are surfaced, the first 3 in input order.
// A zero-variance category has threshold == mean and yields none.
func DetectAnomalies(txns []core.Transaction) []Anomaly {
	stats := CategoryStatistics(txns)

	thresholds := make(map[string]float64, len(stats))
	for category, s := range stats {
		if s.Count < MinCategoryObservations {
			continue
		}
		thresholds[category] = s.Mean + anomalyStdMultiplier*s.Std
	}

	flaggedPerCategory := make(map[string]int)
	var anomalies []Anomaly
	for _, t := range txns {
		if t.Type != core.Expense {
			continue
		}
		threshold, ok := thresholds[t.Category]
		if !ok {
			continue
		}
		amount := t.Amount.Units()
		if amount <= threshold {
			continue
		}
		if flaggedPerCategory[t.Category] >= maxAnomaliesPerCategory {
			continue
		}
		flaggedPerCategory[t.Category]++

		catMean := stats[t.Category].Mean
		anomalies = append(anomalies, Anomaly{
			ID:            uuid.NewString(),
			TransactionID: t.ID,
			Date:          t.Date,
			Category:      t.Category,
			Merchant:      t.Merchant,
			Amount:        amount,
			CategoryMean:  catMean,
			Threshold:     threshold,
			Reason:        fmt.Sprintf("amount %.2f is well above the %s average of %.2f", amount, t.Category, catMean),
		})
	}
	return anomalies
}
