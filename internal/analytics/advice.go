package analytics

// Saving advice per known spending category. A closed registry with an
// explicit fallback, so free-text category drift never silently maps
// to the wrong advice.
var adviceByCategory = map[string][]string{
	"Food": {
		"Plan meals for the week and cook at home more often.",
		"Compare grocery prices and buy staples in bulk.",
	},
	"Rent": {
		"Rent above a third of income strains the rest of the budget. Consider renegotiating or relocating at lease renewal.",
	},
	"Bills": {
		"Review subscriptions and cancel the ones you no longer use.",
		"Compare utility and insurance providers once a year.",
	},
	"Travel": {
		"Book transport and accommodation early for better rates.",
		"Set a fixed travel budget per trip and track against it.",
	},
	"Shopping": {
		"Use a 24-hour rule before non-essential purchases.",
		"Keep a wishlist and buy during sales instead of on impulse.",
	},
	"Entertainment": {
		"Look for free or discounted events before paid ones.",
		"Share streaming subscriptions within the household.",
	},
	"Healthcare": {
		"Use preventive checkups covered by your insurance.",
	},
	"Education": {
		"Check for free courses and library resources before paying.",
	},
	"Other": {
		"Categorize these expenses to see where the money actually goes.",
	},
}

var fallbackAdvice = []string{
	"Track this category for a month to understand the spending pattern.",
	"Set a monthly limit for this category and review it weekly.",
}

// AdviceFor returns saving suggestions for a category, falling back to
// generic advice for categories outside the registry.
func AdviceFor(category string) []string {
	if advice, ok := adviceByCategory[category]; ok {
		return advice
	}
	return fallbackAdvice
}

// TopCategoryAdvice returns advice for the highest-spend categories,
// at most limit entries.
func TopCategoryAdvice(categoryTotals map[string]float64, limit int) []string {
	recs := RecommendBudget(categoryTotals)
	var out []string
	for _, rec := range recs {
		if len(out) >= limit {
			break
		}
		advice := AdviceFor(rec.Category)
		if len(advice) > 0 {
			out = append(out, advice[0])
		}
	}
	return out
}
