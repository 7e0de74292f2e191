package http

import (
	"net/http"

	"fintrack/internal/services"
)

func statsJSON(stats services.UserStats) payload {
	return payload{
		"total_income":          round2(stats.TotalIncome),
		"total_expense":         round2(stats.TotalExpense),
		"total_savings":         round2(stats.TotalSavings),
		"savings_rate":          round1(stats.SavingsRate),
		"current_month_expense": round2(stats.CurrentMonthExpense),
		"transaction_count":     stats.TransactionCount,
	}
}

func (s *Server) handleDashboardData(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.Dashboard.Data(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	monthly := make([]payload, 0, len(data.MonthlyExpenses))
	for _, p := range data.MonthlyExpenses {
		monthly = append(monthly, payload{"month": p.Month, "amount": round2(p.Amount)})
	}

	categories := make(payload, len(data.CategorySpending))
	for category, amount := range data.CategorySpending {
		categories[category] = round2(amount)
	}

	incomeVsExpense := make([]payload, 0, len(data.IncomeVsExpense))
	for _, p := range data.IncomeVsExpense {
		incomeVsExpense = append(incomeVsExpense, payload{
			"month":   p.Month,
			"income":  round2(p.Income),
			"expense": round2(p.Expense),
		})
	}

	distribution := make([]payload, 0, len(data.SpendingDistribution))
	for _, bin := range data.SpendingDistribution {
		distribution = append(distribution, payload{"label": bin.Label, "count": bin.Count})
	}

	writeSuccess(w, payload{
		"stats":                 statsJSON(data.Stats),
		"monthly_expenses":      monthly,
		"category_spending":     categories,
		"income_vs_expense":     incomeVsExpense,
		"spending_distribution": distribution,
	})
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Dashboard.Stats(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, payload{"stats": statsJSON(stats)})
}

func (s *Server) handleDashboardClear(w http.ResponseWriter, r *http.Request) {
	removed, err := s.svc.Dashboard.Clear(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, payload{
		"message": "All transaction data cleared",
		"removed": removed,
	})
}
