package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) (*Server, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	s := NewServer(":0", Services{
		Transactions: services.NewTransactionService(store, nil),
		Predictions:  services.NewPredictionService(store, nil),
		Goals:        services.NewGoalService(store),
		QA:           services.NewQAService(store),
		Dashboard:    services.NewDashboardService(store),
	})
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s, store
}

func doRequest(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func seedExpenses(t *testing.T, store storage.Store, n int, cents int64, category string) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := store.InsertTransaction(context.Background(), core.Transaction{
			UserID:   1,
			Date:     core.NewDate(2026, 1+i%6, 1+i%28),
			Type:     core.Expense,
			Amount:   core.Money{Cents: cents},
			Category: category,
		})
		require.NoError(t, err)
	}
}

func TestHealthAndReady(t *testing.T) {
	s, _ := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, s, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyFailsWhenStoreDown(t *testing.T) {
	store := storage.NewMemoryStore()
	s := NewServer(":0", Services{
		Dashboard: services.NewDashboardService(store),
		Ready:     func(context.Context) error { return errors.New("db gone") },
	})
	t.Cleanup(func() { s.rateLimiter.stop() })

	rec, _ := doRequest(t, s, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPredictExpensesInsufficientDataEnvelope(t *testing.T) {
	s, store := newTestServer(t)
	seedExpenses(t, store, 2, 10000, "Food")

	rec, body := doRequest(t, s, http.MethodPost, "/api/predict/expenses", nil)

	// Not enough history is a non-error outcome, so the status is 200.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "Insufficient data")
	assert.Equal(t, float64(2), body["transaction_count"])
}

func TestPredictExpensesWithEnoughData(t *testing.T) {
	s, store := newTestServer(t)
	seedExpenses(t, store, 3, 10000, "Food")

	rec, body := doRequest(t, s, http.MethodPost, "/api/predict/expenses", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	prediction := body["prediction"].(map[string]any)
	assert.Equal(t, float64(3), prediction["transaction_count"])
	assert.GreaterOrEqual(t, prediction["confidence"].(float64), 0.5)
}

func TestCreateTransaction(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := doRequest(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"date":     "2026-05-10",
		"type":     "expense",
		"amount":   "45.50",
		"category": "Food",
		"merchant": "Corner shop",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	tx := body["transaction"].(map[string]any)
	assert.Equal(t, 45.5, tx["amount"])
	assert.Equal(t, "2026-05-10", tx["date"])
}

func TestCreateTransactionValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
		code int
	}{
		{"non-numeric amount", map[string]any{"date": "2026-05-10", "type": "expense", "amount": "abc", "category": "Food"}, http.StatusBadRequest},
		{"negative amount", map[string]any{"date": "2026-05-10", "type": "expense", "amount": "-5", "category": "Food"}, http.StatusUnprocessableEntity},
		{"bad type", map[string]any{"date": "2026-05-10", "type": "transfer", "amount": "5", "category": "Food"}, http.StatusUnprocessableEntity},
		{"bad date", map[string]any{"date": "10/05/2026", "type": "expense", "amount": "5", "category": "Food"}, http.StatusUnprocessableEntity},
		{"missing category", map[string]any{"date": "2026-05-10", "type": "expense", "amount": "5"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := doRequest(t, s, http.MethodPost, "/api/transactions", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestRecommendBudgetNoData(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := doRequest(t, s, http.MethodPost, "/api/recommend/budget", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "No expense data")
}

func TestGoalLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := doRequest(t, s, http.MethodPost, "/api/goals", map[string]any{
		"name":          "Emergency fund",
		"type":          "savings",
		"target_amount": "10000",
		"target_date":   "2030-01-01",
		"priority":      "high",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	goal := body["goal"].(map[string]any)
	goalID := int64(goal["id"].(float64))
	assert.Equal(t, "active", goal["status"])

	rec, body = doRequest(t, s, http.MethodPost,
		"/api/goals/"+itoa(goalID)+"/contribute",
		map[string]any{"amount": "2500", "date": "2026-07-10"})
	require.Equal(t, http.StatusOK, rec.Code)
	goal = body["goal"].(map[string]any)
	assert.Equal(t, 25.0, goal["progress_pct"])
	assert.Equal(t, []any{float64(25)}, body["new_milestones"])

	rec, body = doRequest(t, s, http.MethodGet, "/api/goals/"+itoa(goalID)+"/details", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	contributions := body["contributions"].([]any)
	assert.Len(t, contributions, 1)

	rec, body = doRequest(t, s, http.MethodGet, "/api/goals/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["total_goals"])
	assert.Equal(t, 2500.0, stats["total_saved"])

	rec, _ = doRequest(t, s, http.MethodPost, "/api/goals/"+itoa(goalID)+"/delete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, s, http.MethodGet, "/api/goals/"+itoa(goalID)+"/details", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateGoalPastDate(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := doRequest(t, s, http.MethodPost, "/api/goals", map[string]any{
		"name":          "Time machine",
		"target_amount": "100",
		"target_date":   "2020-01-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestAskAndHistory(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := doRequest(t, s, http.MethodPost, "/api/financial-qa/ask", map[string]any{
		"question": "How is my budget looking?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "budget", body["intent"])
	assert.NotEmpty(t, body["response"])

	rec, body = doRequest(t, s, http.MethodGet, "/api/financial-qa/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := body["history"].([]any)
	require.Len(t, history, 1)
	entry := history[0].(map[string]any)
	assert.Equal(t, "How is my budget looking?", entry["question"])
}

func TestAskEmptyQuestionRejected(t *testing.T) {
	s, _ := newTestServer(t)

	rec, body := doRequest(t, s, http.MethodPost, "/api/financial-qa/ask", map[string]any{
		"question": "  ",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestDashboardDataAndClear(t *testing.T) {
	s, store := newTestServer(t)
	seedExpenses(t, store, 5, 20000, "Food")

	rec, body := doRequest(t, s, http.MethodGet, "/api/dashboard/data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(5), stats["transaction_count"])
	assert.Equal(t, 1000.0, stats["total_expense"])
	assert.Len(t, body["spending_distribution"].([]any), 6)

	rec, body = doRequest(t, s, http.MethodPost, "/api/dashboard/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5), body["removed"])

	rec, body = doRequest(t, s, http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats = body["stats"].(map[string]any)
	assert.Equal(t, float64(0), stats["transaction_count"])
}

func TestUserScopedByHeader(t *testing.T) {
	s, store := newTestServer(t)
	seedExpenses(t, store, 1, 10000, "Food")

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	req.Header.Set("X-User-ID", "2")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(0), stats["transaction_count"])
}

func TestPostRateLimit(t *testing.T) {
	s, _ := newTestServer(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 61; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/recommend/budget", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		last = httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(last, req)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "60", last.Header().Get("Retry-After"))
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
