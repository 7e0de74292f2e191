// Package http exposes the JSON API: analytics, goals, Q&A, dashboard
// and transaction ingestion.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/services"
)

// Services bundles the dependencies the server dispatches to. Ready is
// probed by /readyz.
type Services struct {
	Transactions *services.TransactionService
	Predictions  *services.PredictionService
	Goals        *services.GoalService
	QA           *services.QAService
	Dashboard    *services.DashboardService
	Ready        func(ctx context.Context) error
}

type Server struct {
	http.Server
	svc         Services
	rateLimiter *rateLimiter
}

// Simple in-memory rate limiter, per client IP.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	// Reset counter if more than 1 minute has passed.
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}

// NewServer configures routes and middleware, returning a
// ready-to-run http.Server.
func NewServer(addr string, svc Services) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:         svc,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/transactions", s.wrap(s.handleCreateTransaction))

	mux.HandleFunc("POST /api/predict/expenses", s.wrap(s.handlePredictExpenses))
	mux.HandleFunc("POST /api/predict/savings", s.wrap(s.handlePredictSavings))
	mux.HandleFunc("POST /api/predict/bills", s.wrap(s.handlePredictBills))
	mux.HandleFunc("POST /api/detect/anomalies", s.wrap(s.handleDetectAnomalies))
	mux.HandleFunc("POST /api/recommend/budget", s.wrap(s.handleRecommendBudget))

	mux.HandleFunc("GET /api/goals", s.wrap(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.wrap(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals/stats", s.wrap(s.handleGoalStats))
	mux.HandleFunc("GET /api/goals/{id}/details", s.wrap(s.handleGoalDetails))
	mux.HandleFunc("POST /api/goals/{id}/contribute", s.wrap(s.handleContribute))
	mux.HandleFunc("POST /api/goals/{id}/update", s.wrap(s.handleUpdateGoal))
	mux.HandleFunc("POST /api/goals/{id}/delete", s.wrap(s.handleDeleteGoal))

	mux.HandleFunc("POST /api/financial-qa/ask", s.wrap(s.handleAsk))
	mux.HandleFunc("GET /api/financial-qa/history", s.wrap(s.handleQAHistory))

	mux.HandleFunc("GET /api/dashboard/data", s.wrap(s.handleDashboardData))
	mux.HandleFunc("GET /api/dashboard/stats", s.wrap(s.handleDashboardStats))
	mux.HandleFunc("POST /api/dashboard/clear", s.wrap(s.handleDashboardClear))

	return s
}

// Shutdown stops the server and its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}

// wrap adds security headers, POST rate limiting and request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := r.Context()
		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeFailure(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Ready != nil {
		if err := s.svc.Ready(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
