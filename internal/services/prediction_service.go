package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Bill-like categories used by the bill estimator.
var billCategories = []string{"Bills", "Rent"}

const analysisFetchLimit = 500

// ExpensePrediction is the outcome of a next-month expense forecast.
// Insufficient is a non-error outcome: too little history to forecast.
type ExpensePrediction struct {
	Insufficient     bool
	TransactionCount int
	Value            float64
	Confidence       float64
	MonthsUsed       int
	PredictionID     string
}

// SavingsPrediction is the outcome of a next-month savings forecast.
type SavingsPrediction struct {
	Insufficient bool
	Value        float64
	Confidence   float64
	PredictionID string
}

// AnomalyReport carries detected outliers, or the insufficiency marker.
type AnomalyReport struct {
	Insufficient     bool
	TransactionCount int
	Anomalies        []analytics.Anomaly
}

// BillEstimate is the expected monthly recurring-bill total.
type BillEstimate struct {
	Insufficient bool
	Total        float64
	Breakdown    map[string]float64
}

// PredictionService runs the analytics engines over the stored ledger
// and persists successful forecasts.
type PredictionService struct {
	store     storage.Store
	publisher LedgerPublisher
	now       func() time.Time
}

func NewPredictionService(store storage.Store, publisher LedgerPublisher) *PredictionService {
	return &PredictionService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// PredictExpenses forecasts next month's total expense. Fewer than 3
// expense transactions yields the insufficient outcome.
func (s *PredictionService) PredictExpenses(ctx context.Context, userID int64) (ExpensePrediction, error) {
	txns, err := s.store.FetchTransactions(ctx, userID, storage.TransactionFilter{
		Type:  core.Expense,
		Limit: analysisFetchLimit,
	})
	if err != nil {
		return ExpensePrediction{}, fmt.Errorf("fetch expenses: %w", err)
	}

	if len(txns) < analytics.MinForecastTransactions {
		return ExpensePrediction{Insufficient: true, TransactionCount: len(txns)}, nil
	}

	aggs := analytics.MonthlyTotals(txns, core.Expense)
	forecast := analytics.PredictNextExpense(aggs)

	result := ExpensePrediction{
		TransactionCount: len(txns),
		Value:            forecast.Value,
		Confidence:       forecast.Confidence,
		MonthsUsed:       len(aggs),
	}
	result.PredictionID = s.persistForecast(ctx, userID, core.MonthlyExpense, forecast.Value, forecast.Confidence)
	return result, nil
}

// PredictSavings forecasts next month's savings. No transactions at
// all yields the insufficient outcome; a missing income or expense
// side degenerates to a zero-value, low-confidence forecast.
func (s *PredictionService) PredictSavings(ctx context.Context, userID int64) (SavingsPrediction, error) {
	txns, err := s.store.FetchTransactions(ctx, userID, storage.TransactionFilter{
		Limit: analysisFetchLimit,
	})
	if err != nil {
		return SavingsPrediction{}, fmt.Errorf("fetch transactions: %w", err)
	}
	if len(txns) == 0 {
		return SavingsPrediction{Insufficient: true}, nil
	}

	income := analytics.MonthlyTotals(txns, core.Income)
	expense := analytics.MonthlyTotals(txns, core.Expense)
	forecast := analytics.PredictSavings(income, expense)

	result := SavingsPrediction{
		Value:      forecast.Value,
		Confidence: forecast.Confidence,
	}
	// Degenerate forecasts (one side missing) are not worth keeping.
	if forecast.Confidence > 0.5 {
		result.PredictionID = s.persistForecast(ctx, userID, core.MonthlySavings, forecast.Value, forecast.Confidence)
	}
	return result, nil
}

// DetectAnomalies flags outlier expenses. Fewer than 10 expense
// transactions yields the insufficient outcome.
func (s *PredictionService) DetectAnomalies(ctx context.Context, userID int64) (AnomalyReport, error) {
	txns, err := s.store.FetchTransactions(ctx, userID, storage.TransactionFilter{
		Type:  core.Expense,
		Limit: analysisFetchLimit,
	})
	if err != nil {
		return AnomalyReport{}, fmt.Errorf("fetch expenses: %w", err)
	}

	if len(txns) < analytics.MinAnomalyTransactions {
		return AnomalyReport{Insufficient: true, TransactionCount: len(txns)}, nil
	}

	return AnomalyReport{
		TransactionCount: len(txns),
		Anomalies:        analytics.DetectAnomalies(txns),
	}, nil
}

// RecommendBudget compares category spending against the reference
// allocation. Nil recommendations mean no expense data.
func (s *PredictionService) RecommendBudget(ctx context.Context, userID int64) ([]analytics.BudgetRecommendation, error) {
	txns, err := s.store.FetchTransactions(ctx, userID, storage.TransactionFilter{
		Type:  core.Expense,
		Limit: analysisFetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch expenses: %w", err)
	}
	return analytics.RecommendBudget(analytics.CategoryTotals(txns)), nil
}

// EstimateBills averages historical bill-like spending per category.
func (s *PredictionService) EstimateBills(ctx context.Context, userID int64) (BillEstimate, error) {
	txns, err := s.store.FetchTransactions(ctx, userID, storage.TransactionFilter{
		Type:       core.Expense,
		Categories: billCategories,
		Limit:      analysisFetchLimit,
	})
	if err != nil {
		return BillEstimate{}, fmt.Errorf("fetch bill transactions: %w", err)
	}
	if len(txns) == 0 {
		return BillEstimate{Insufficient: true}, nil
	}

	total, breakdown := analytics.EstimateBills(analytics.CategoryStatistics(txns))
	return BillEstimate{Total: total, Breakdown: breakdown}, nil
}

// persistForecast stores the prediction and announces it to the export
// worker. Both steps are best-effort; the computed forecast is always
// returned to the caller.
func (s *PredictionService) persistForecast(ctx context.Context, userID int64, typ core.PredictionType, value, confidence float64) string {
	now := s.now()
	p := core.Prediction{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       typ,
		Value:      value,
		TargetDate: core.NewDate(now.Year(), int(now.Month())+1, 1),
		Confidence: confidence,
	}

	if err := s.store.InsertPrediction(ctx, p); err != nil {
		slog.ErrorContext(ctx, "Failed to persist prediction",
			"type", string(typ), "user_id", userID, "error", err)
		return ""
	}

	if s.publisher != nil {
		if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewPredictionEvent(p.ID, userID)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish prediction event",
				"id", p.ID, "error", err)
		}
	}
	return p.ID
}
