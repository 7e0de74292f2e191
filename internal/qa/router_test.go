package qa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fintrack/internal/core"
)

func TestRouterIntentOrder(t *testing.T) {
	r := NewRouter()

	tests := []struct {
		question string
		want     string
	}{
		{question: "Why are my expenses higher this month?", want: "expense_increase"},
		{question: "Can I afford a new bike?", want: "affordability"},
		{question: "How do I save on groceries?", want: "saving"},
		{question: "Show my budget by category", want: "budget"},
		{question: "Am I going to achieve my goal?", want: "goals"},
		{question: "Hello there", want: "general"},
		// "expense" wins over "budget": first match in priority order.
		{question: "What is my expense budget?", want: "expense_increase"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Intent(tt.question))
		})
	}
}

func TestParsePurchaseAmount(t *testing.T) {
	tests := []struct {
		question string
		want     float64
	}{
		{question: "can i afford a phone for 45000", want: 45000},
		{question: "can i afford a 45,000 phone", want: 45000},
		{question: "can i buy a bike for 80k", want: 80000},
		{question: "can i buy a car for 5 lakh", want: 500000},
		{question: "is 2.5 lakhs too much", want: 250000},
		{question: "can i afford 12 thousand", want: 12000},
		{question: "can i afford a car", want: defaultPurchaseAmount},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePurchaseAmount(tt.question))
		})
	}
}

func testContext() FinancialContext {
	txns := []core.Transaction{
		{Date: core.NewDate(2026, 5, 10), Type: core.Income, Amount: core.Money{Cents: 500000}, Category: "Salary"},
		{Date: core.NewDate(2026, 5, 12), Type: core.Expense, Amount: core.Money{Cents: 120000}, Category: "Rent"},
		{Date: core.NewDate(2026, 6, 2), Type: core.Income, Amount: core.Money{Cents: 500000}, Category: "Salary"},
		{Date: core.NewDate(2026, 6, 5), Type: core.Expense, Amount: core.Money{Cents: 120000}, Category: "Rent"},
		{Date: core.NewDate(2026, 6, 8), Type: core.Expense, Amount: core.Money{Cents: 60000}, Category: "Food"},
	}
	return BuildContext(txns, nil, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
}

func TestBuildContext(t *testing.T) {
	fc := testContext()

	assert.Equal(t, 10000.0, fc.TotalIncome)
	assert.Equal(t, 3000.0, fc.TotalExpense)
	assert.Equal(t, 7000.0, fc.TotalSavings)
	assert.Equal(t, 5000.0, fc.MonthIncome)
	assert.Equal(t, 1800.0, fc.MonthExpense)
	assert.Equal(t, 100.0, fc.AvgDailyExpense)
	assert.Equal(t, 2400.0, fc.CategorySpending["Rent"])
}

func TestAnswerAffordability(t *testing.T) {
	fc := testContext() // 7000 total savings

	a := answerAffordability("can i afford a 5k purchase", fc)
	assert.Contains(t, a.Response, "afford this purchase right now")

	a = answerAffordability("can i afford a 50k purchase", fc)
	assert.Contains(t, a.Response, "Amount needed: 43000")
	assert.NotEmpty(t, a.Suggestions)
}

func TestAnswerGoalsEmpty(t *testing.T) {
	fc := testContext()
	a := answerGoals("will I achieve my goals", fc)
	assert.Contains(t, a.Insights, "No active goals found")
}

func TestAnswerGoals(t *testing.T) {
	fc := testContext()
	fc.Goals = []core.Goal{{
		Name:          "Vacation",
		TargetAmount:  core.Money{Cents: 1000000},
		CurrentAmount: core.Money{Cents: 250000},
		TargetDate:    core.NewDate(2026, 12, 31),
		Status:        core.GoalActive,
	}}
	a := answerGoals("how are my goals", fc)
	assert.Contains(t, a.Response, "Vacation")
	assert.Contains(t, a.Response, "25.0%")
}

func TestAnswerGeneralAdviceBands(t *testing.T) {
	fc := FinancialContext{TotalIncome: 1000, TotalExpense: 900}
	a := answerGeneralAdvice("hello", fc)
	assert.Contains(t, a.Response, "below the recommended 20%")

	fc = FinancialContext{TotalIncome: 1000, TotalExpense: 750}
	a = answerGeneralAdvice("hello", fc)
	assert.Contains(t, a.Response, "Good savings rate")

	fc = FinancialContext{TotalIncome: 1000, TotalExpense: 500}
	a = answerGeneralAdvice("hello", fc)
	assert.Contains(t, a.Response, "Excellent savings rate")
}
