package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/qa"
	"fintrack/internal/storage"
)

const (
	qaContextFetchLimit = 100
	qaHistoryLimit      = 20
)

// ErrEmptyQuestion rejects blank questions before routing.
var ErrEmptyQuestion = errors.New("empty question")

// QAResult is a routed answer plus the intent that produced it.
type QAResult struct {
	Intent string
	Answer qa.Answer
}

// QAService answers financial questions over the user's recent data
// and keeps a history of what was asked.
type QAService struct {
	store  storage.Store
	router *qa.Router
}

func NewQAService(store storage.Store) *QAService {
	return &QAService{
		store:  store,
		router: qa.NewRouter(),
	}
}

// Ask routes the question to an intent handler and records the
// exchange. A history write failure is logged; the answer still goes
// back to the caller.
func (s *QAService) Ask(ctx context.Context, userID int64, question string, now core.Date) (QAResult, error) {
	if strings.TrimSpace(question) == "" {
		return QAResult{}, ErrEmptyQuestion
	}

	txns, err := s.store.FetchTransactions(ctx, userID, storage.TransactionFilter{
		Limit:      qaContextFetchLimit,
		Descending: true,
	})
	if err != nil {
		return QAResult{}, fmt.Errorf("fetch transactions: %w", err)
	}
	goals, err := s.store.ListGoals(ctx, userID, core.GoalActive)
	if err != nil {
		return QAResult{}, fmt.Errorf("list goals: %w", err)
	}

	fc := qa.BuildContext(txns, goals, now.Time)
	answer := s.router.Answer(question, fc)
	intent := s.router.Intent(question)

	if err := s.store.InsertQARecord(ctx, core.QARecord{
		UserID:   userID,
		Question: question,
		Answer:   answer.Response,
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to record QA history",
			"user_id", userID, "intent", intent, "error", err)
	}

	return QAResult{Intent: intent, Answer: answer}, nil
}

// History returns the user's most recent exchanges, newest first.
func (s *QAService) History(ctx context.Context, userID int64) ([]core.QARecord, error) {
	records, err := s.store.ListQAHistory(ctx, userID, qaHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list QA history: %w", err)
	}
	return records, nil
}
