package qa

import "strings"

// Answer is a phrased response plus structured insight and suggestion
// lists for the presentation layer.
type Answer struct {
	Response    string
	Insights    []string
	Suggestions []string
}

// Handler produces an answer for one intent.
type Handler func(question string, fc FinancialContext) Answer

type route struct {
	intent    string
	predicate func(q string) bool
	handler   Handler
}

// Router maps a question to exactly one handler. Routes are evaluated
// in registration order and the first match wins, so broader intents
// must be registered after narrower ones.
type Router struct {
	routes   []route
	fallback Handler
}

// NewRouter builds the intent registry. Constructed once at startup
// and never mutated afterwards.
func NewRouter() *Router {
	return &Router{
		routes: []route{
			{intent: "expense_increase", predicate: anyKeyword("why", "higher", "more", "increased", "expense"), handler: answerExpenseIncrease},
			{intent: "affordability", predicate: anyKeyword("afford", "can i buy", "purchase", "bike", "car"), handler: answerAffordability},
			{intent: "saving", predicate: anyKeyword("save", "saving", "reduce"), handler: answerSaving},
			{intent: "budget", predicate: anyKeyword("budget", "spending", "category"), handler: answerSpendingPatterns},
			{intent: "goals", predicate: anyKeyword("goal", "target", "achieve"), handler: answerGoals},
		},
		fallback: answerGeneralAdvice,
	}
}

// Answer routes the question to its handler.
func (r *Router) Answer(question string, fc FinancialContext) Answer {
	q := strings.ToLower(question)
	for _, rt := range r.routes {
		if rt.predicate(q) {
			return rt.handler(question, fc)
		}
	}
	return r.fallback(question, fc)
}

// Intent reports which handler would answer the question. Exposed for
// logging and tests.
func (r *Router) Intent(question string) string {
	q := strings.ToLower(question)
	for _, rt := range r.routes {
		if rt.predicate(q) {
			return rt.intent
		}
	}
	return "general"
}

func anyKeyword(keywords ...string) func(string) bool {
	return func(q string) bool {
		for _, k := range keywords {
			if strings.Contains(q, k) {
				return true
			}
		}
		return false
	}
}
