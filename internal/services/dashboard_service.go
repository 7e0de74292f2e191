package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const (
	dashboardFetchLimit = 1000
	dashboardCacheSize  = 64
	dashboardCacheTTL   = 5 * time.Minute
)

// Spending distribution bins, upper bounds in currency units. Amounts
// at or above the last bound land in the open-ended top bin.
var (
	distributionBounds = []float64{500, 1000, 2000, 5000, 10000}
	distributionLabels = []string{"0-500", "500-1K", "1K-2K", "2K-5K", "5K-10K", "10K+"}
)

// UserStats is the headline numbers block of the dashboard.
type UserStats struct {
	TotalIncome         float64
	TotalExpense        float64
	TotalSavings        float64
	SavingsRate         float64
	CurrentMonthExpense float64
	TransactionCount    int
}

// MonthlyPoint is one month of a time series.
type MonthlyPoint struct {
	Month  string
	Amount float64
}

// IncomeExpensePoint pairs income and expense for one month.
type IncomeExpensePoint struct {
	Month   string
	Income  float64
	Expense float64
}

// DistributionBin is one bar of the spending histogram.
type DistributionBin struct {
	Label string
	Count int
}

// DashboardData is everything the dashboard renders, computed in one
// pass and cached per user.
type DashboardData struct {
	Stats                UserStats
	MonthlyExpenses      []MonthlyPoint
	CategorySpending     map[string]float64
	IncomeVsExpense      []IncomeExpensePoint
	SpendingDistribution []DistributionBin
}

// DashboardService serves aggregated dashboard views with a short TTL
// cache in front of the analytics pass.
type DashboardService struct {
	store storage.Store
	cache *cache.LRUCache[DashboardData]
	now   func() time.Time
}

func NewDashboardService(store storage.Store) *DashboardService {
	return &DashboardService{
		store: store,
		cache: cache.NewLRUCache[DashboardData](dashboardCacheSize, dashboardCacheTTL),
		now:   time.Now,
	}
}

// Data returns the full dashboard payload, from cache when fresh.
func (s *DashboardService) Data(ctx context.Context, userID int64) (DashboardData, error) {
	key := cacheKey(userID)
	if data, ok := s.cache.Get(key); ok {
		slog.DebugContext(ctx, "Dashboard cache hit", "user_id", userID)
		return data, nil
	}

	txns, err := s.store.FetchTransactions(ctx, userID, storage.TransactionFilter{
		Limit: dashboardFetchLimit,
	})
	if err != nil {
		return DashboardData{}, fmt.Errorf("fetch transactions: %w", err)
	}

	data := s.build(txns)
	s.cache.Set(key, data)
	return data, nil
}

// Stats returns only the headline numbers.
func (s *DashboardService) Stats(ctx context.Context, userID int64) (UserStats, error) {
	data, err := s.Data(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	return data.Stats, nil
}

// Clear deletes all of the user's transactions and drops the cached
// dashboard. Returns the number of rows removed.
func (s *DashboardService) Clear(ctx context.Context, userID int64) (int64, error) {
	removed, err := s.store.ClearUserData(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear user data: %w", err)
	}
	s.cache.Delete(cacheKey(userID))
	slog.InfoContext(ctx, "Cleared user data", "user_id", userID, "removed", removed)
	return removed, nil
}

// Invalidate drops the cached dashboard after a write elsewhere.
func (s *DashboardService) Invalidate(userID int64) {
	s.cache.Delete(cacheKey(userID))
}

func (s *DashboardService) build(txns []core.Transaction) DashboardData {
	incomeMonths := analytics.MonthlyTotals(txns, core.Income)
	expenseMonths := analytics.MonthlyTotals(txns, core.Expense)

	stats := UserStats{TransactionCount: len(txns)}
	for _, a := range incomeMonths {
		stats.TotalIncome += a.Total
	}
	for _, a := range expenseMonths {
		stats.TotalExpense += a.Total
	}
	stats.TotalSavings = stats.TotalIncome - stats.TotalExpense
	stats.SavingsRate = analytics.SavingsRate(stats.TotalIncome, stats.TotalExpense)

	currentPeriod := s.now().Format("2006-01")
	for _, a := range expenseMonths {
		if a.Period == currentPeriod {
			stats.CurrentMonthExpense = a.Total
		}
	}

	monthly := make([]MonthlyPoint, len(expenseMonths))
	for i, a := range expenseMonths {
		monthly[i] = MonthlyPoint{Month: a.Period, Amount: a.Total}
	}

	return DashboardData{
		Stats:                stats,
		MonthlyExpenses:      monthly,
		CategorySpending:     analytics.CategoryTotals(txns),
		IncomeVsExpense:      mergeIncomeExpense(incomeMonths, expenseMonths),
		SpendingDistribution: distribution(txns),
	}
}

// mergeIncomeExpense joins the two monthly series on period, keeping
// every month either side has.
func mergeIncomeExpense(income, expense []analytics.MonthlyAggregate) []IncomeExpensePoint {
	byPeriod := make(map[string]*IncomeExpensePoint)
	order := make([]string, 0, len(income)+len(expense))

	touch := func(period string) *IncomeExpensePoint {
		if p, ok := byPeriod[period]; ok {
			return p
		}
		p := &IncomeExpensePoint{Month: period}
		byPeriod[period] = p
		order = append(order, period)
		return p
	}

	for _, a := range income {
		touch(a.Period).Income = a.Total
	}
	for _, a := range expense {
		touch(a.Period).Expense = a.Total
	}

	sort.Strings(order)
	points := make([]IncomeExpensePoint, 0, len(order))
	for _, period := range order {
		points = append(points, *byPeriod[period])
	}
	return points
}

func distribution(txns []core.Transaction) []DistributionBin {
	counts := make([]int, len(distributionLabels))
	for _, t := range txns {
		if t.Type != core.Expense {
			continue
		}
		counts[binIndex(t.Amount.Units())]++
	}

	bins := make([]DistributionBin, len(distributionLabels))
	for i, label := range distributionLabels {
		bins[i] = DistributionBin{Label: label, Count: counts[i]}
	}
	return bins
}

func binIndex(amount float64) int {
	for i, bound := range distributionBounds {
		if amount < bound {
			return i
		}
	}
	return len(distributionBounds)
}

func cacheKey(userID int64) string {
	return "dashboard:" + strconv.FormatInt(userID, 10)
}
