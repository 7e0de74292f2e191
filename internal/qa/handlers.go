package qa

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"fintrack/internal/analytics"
)

// defaultPurchaseAmount is assumed when an affordability question
// names no amount.
const defaultPurchaseAmount = 150000

var amountPattern = regexp.MustCompile(`(\d+(?:,\d+)*(?:\.\d+)?)\s*(lakhs|lakh|l|thousand|k)?\b`)

// parsePurchaseAmount extracts an amount from the question text,
// honoring k/thousand and l/lakh multipliers.
func parsePurchaseAmount(question string) float64 {
	m := amountPattern.FindStringSubmatch(strings.ToLower(question))
	if m == nil {
		return defaultPurchaseAmount
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return defaultPurchaseAmount
	}
	switch m[2] {
	case "l", "lakh", "lakhs":
		value *= 100000
	case "k", "thousand":
		value *= 1000
	}
	return value
}

func answerExpenseIncrease(_ string, fc FinancialContext) Answer {
	top := fc.topCategories(3)

	var b strings.Builder
	b.WriteString("Based on your recent transactions:\n\n")
	fmt.Fprintf(&b, "This month's expenses: %.0f\n", fc.MonthExpense)
	fmt.Fprintf(&b, "Average daily spending: %.0f\n\n", fc.AvgDailyExpense)
	b.WriteString("Top spending categories:\n")
	for _, c := range top {
		pct := 0.0
		if fc.TotalExpense > 0 {
			pct = c.Amount / fc.TotalExpense * 100
		}
		fmt.Fprintf(&b, "  - %s: %.0f (%.1f%%)\n", c.Category, c.Amount, pct)
	}

	answer := Answer{Response: b.String()}
	if len(top) > 0 {
		answer.Insights = append(answer.Insights,
			fmt.Sprintf("Your highest expense category is %s with %.0f", top[0].Category, top[0].Amount))
		answer.Suggestions = append(answer.Suggestions,
			fmt.Sprintf("Consider reducing %s expenses by 10-15%%", top[0].Category))
	}
	trend := "lower"
	if fc.MonthExpense > fc.AvgDailyExpense*30 {
		trend = "higher"
	}
	answer.Insights = append(answer.Insights,
		fmt.Sprintf("Monthly expenses are %s than average", trend))
	answer.Suggestions = append(answer.Suggestions,
		"Track daily expenses to identify unnecessary spending",
		"Set category-wise budget limits")
	return answer
}

func answerAffordability(question string, fc FinancialContext) Answer {
	target := parsePurchaseAmount(question)
	savings := fc.TotalSavings
	monthly := fc.MonthSavings

	var b strings.Builder
	fmt.Fprintf(&b, "Affordability analysis for %.0f:\n\n", target)

	if savings >= target {
		fmt.Fprintf(&b, "You have %.0f in savings and can afford this purchase right now.\n", savings)
		fmt.Fprintf(&b, "Remaining savings after purchase: %.0f\n", savings-target)
		return Answer{
			Response: b.String(),
			Insights: []string{"You have sufficient savings for this purchase"},
			Suggestions: []string{
				"Consider keeping an emergency fund of 3-6 months expenses",
				"Ensure this purchase aligns with your financial goals",
			},
		}
	}

	shortfall := target - savings
	fmt.Fprintf(&b, "Current savings: %.0f\n", savings)
	fmt.Fprintf(&b, "Amount needed: %.0f\n", shortfall)
	fmt.Fprintf(&b, "Monthly savings: %.0f\n\n", monthly)
	if monthly > 0 {
		months := int(math.Ceil(shortfall / monthly))
		fmt.Fprintf(&b, "At your current savings rate you can afford this in about %d months.\n", months)
	} else {
		b.WriteString("You need to start saving to afford this purchase.\n")
	}

	return Answer{
		Response: b.String(),
		Insights: []string{
			fmt.Sprintf("You need %.0f more to afford this", shortfall),
			fmt.Sprintf("Current monthly savings: %.0f", monthly),
		},
		Suggestions: []string{
			fmt.Sprintf("Save %.0f per month for 6 months", shortfall/6),
			"Reduce non-essential expenses to increase savings",
			"Consider creating a dedicated goal for this purchase",
		},
	}
}

// Fraction of a category's spend considered recoverable, per advice
// registry category.
var savingPotential = map[string]float64{
	"Food":          0.3,
	"Shopping":      0.4,
	"Entertainment": 0.5,
	"Travel":        0.25,
}

func answerSaving(_ string, fc FinancialContext) Answer {
	top := fc.topCategories(3)

	var steps []string
	potential := 0.0
	for _, c := range top {
		potential += c.Amount * 0.3
		fraction, ok := savingPotential[c.Category]
		if !ok {
			continue
		}
		advice := analytics.AdviceFor(c.Category)
		steps = append(steps,
			fmt.Sprintf("%s: %s Potential savings: %.0f/month", c.Category, advice[0], c.Amount*fraction))
	}

	var b strings.Builder
	b.WriteString("Personalized saving strategies:\n\n")
	fmt.Fprintf(&b, "Current monthly expenses: %.0f\n", fc.MonthExpense)
	fmt.Fprintf(&b, "Potential monthly savings: %.0f\n\n", potential)
	if len(steps) > 0 {
		b.WriteString("Actionable steps:\n")
		for i, s := range steps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
		}
	}

	answer := Answer{
		Response: b.String(),
		Insights: []string{
			fmt.Sprintf("You can potentially save %.0f per month", potential),
		},
		Suggestions: []string{
			"Create a monthly budget and stick to it",
			"Use the 50/30/20 rule: 50% needs, 30% wants, 20% savings",
			"Automate savings by setting up recurring transfers",
			"Track every expense to identify spending leaks",
		},
	}
	if len(top) > 0 {
		answer.Insights = append(answer.Insights,
			fmt.Sprintf("Focus on reducing %s expenses first", top[0].Category))
	}
	return answer
}

func answerSpendingPatterns(_ string, fc FinancialContext) Answer {
	var b strings.Builder
	b.WriteString("Your spending pattern analysis:\n\n")
	fmt.Fprintf(&b, "Total expenses: %.0f\n", fc.TotalExpense)
	fmt.Fprintf(&b, "This month: %.0f\n\n", fc.MonthExpense)
	b.WriteString("Category breakdown:\n")
	for _, c := range fc.topCategories(len(fc.CategorySpending)) {
		pct := 0.0
		if fc.TotalExpense > 0 {
			pct = c.Amount / fc.TotalExpense * 100
		}
		fmt.Fprintf(&b, "  - %s: %.0f (%.1f%%)\n", c.Category, c.Amount, pct)
	}

	answer := Answer{
		Response: b.String(),
		Insights: []string{
			fmt.Sprintf("Average daily expense: %.0f", fc.AvgDailyExpense),
		},
		Suggestions: []string{
			"Set category-wise budget limits",
			"Review and reduce top 3 expense categories",
		},
	}
	if top := fc.topCategories(1); len(top) > 0 {
		answer.Insights = append([]string{
			fmt.Sprintf("Highest spending: %s", top[0].Category),
		}, answer.Insights...)
	}
	return answer
}

func answerGoals(_ string, fc FinancialContext) Answer {
	if len(fc.Goals) == 0 {
		return Answer{
			Response: "You haven't set any financial goals yet.\n\n" +
				"Setting goals is crucial for financial success. Consider creating goals for:\n" +
				"  - Emergency fund (3-6 months expenses)\n" +
				"  - Major purchases\n" +
				"  - Debt payoff\n" +
				"  - Investment targets\n",
			Insights:    []string{"No active goals found"},
			Suggestions: []string{"Create your first financial goal", "Start with an emergency fund goal"},
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your financial goals (%d active):\n\n", len(fc.Goals))
	totalTarget := 0.0
	for _, g := range fc.Goals {
		totalTarget += g.TargetAmount.Units()
		fmt.Fprintf(&b, "%s\n", g.Name)
		fmt.Fprintf(&b, "  Target: %.0f\n", g.TargetAmount.Units())
		fmt.Fprintf(&b, "  Progress: %.1f%% (%.0f)\n", g.ProgressPct(), g.CurrentAmount.Units())
		fmt.Fprintf(&b, "  Remaining: %.0f\n", g.Remaining().Units())
		fmt.Fprintf(&b, "  Deadline: %s\n\n", g.TargetDate)
	}

	return Answer{
		Response: b.String(),
		Insights: []string{
			fmt.Sprintf("You have %d active goals", len(fc.Goals)),
			fmt.Sprintf("Total target amount: %.0f", totalTarget),
		},
		Suggestions: []string{
			"Prioritize high-priority goals",
			"Make regular contributions to stay on track",
			"Review and adjust goals quarterly",
		},
	}
}

func answerGeneralAdvice(_ string, fc FinancialContext) Answer {
	rate := analytics.SavingsRate(fc.TotalIncome, fc.TotalExpense)

	var b strings.Builder
	b.WriteString("Financial overview:\n\n")
	fmt.Fprintf(&b, "Total income: %.0f\n", fc.TotalIncome)
	fmt.Fprintf(&b, "Total expenses: %.0f\n", fc.TotalExpense)
	fmt.Fprintf(&b, "Total savings: %.0f\n", fc.TotalSavings)
	fmt.Fprintf(&b, "Savings rate: %.1f%%\n\n", rate)

	switch {
	case rate < 20:
		b.WriteString("Your savings rate is below the recommended 20%. Focus on increasing savings.\n")
	case rate < 30:
		b.WriteString("Good savings rate. Try to push it to 30% for better financial security.\n")
	default:
		b.WriteString("Excellent savings rate. You are on track for strong financial health.\n")
	}

	return Answer{
		Response: b.String(),
		Insights: []string{
			fmt.Sprintf("Savings rate: %.1f%%", rate),
			fmt.Sprintf("Monthly savings: %.0f", fc.MonthSavings),
		},
		Suggestions: []string{
			"Build an emergency fund of 6 months expenses",
			"Start investing in diversified portfolios",
			"Review insurance coverage",
			"Minimize high-interest debt",
		},
	}
}
