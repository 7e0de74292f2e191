// Package storage persists the ledger: transactions, goals,
// contributions, predictions and Q&A history. The SQLite
// implementation is the production backend; the in-memory one backs
// tests.
package storage

import (
	"context"

	"fintrack/internal/core"
)

// TransactionFilter narrows FetchTransactions. Zero values mean no
// restriction.
type TransactionFilter struct {
	Type       core.TransactionType
	Categories []string
	Limit      int
	Descending bool
}

// Store is the persistence port used by the service layer.
type Store interface {
	// Transactions
	InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	FetchTransaction(ctx context.Context, id, userID int64) (core.Transaction, error)
	FetchTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error)
	ClearUserData(ctx context.Context, userID int64) (int64, error)

	// Goals. AddContribution appends the contribution, recomputes the
	// goal total from the summed ledger and applies the completed
	// transition, all in one transaction.
	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	FetchGoal(ctx context.Context, goalID, userID int64) (core.Goal, error)
	ListGoals(ctx context.Context, userID int64, status core.GoalStatus) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, goalID, userID int64) error
	AddContribution(ctx context.Context, userID int64, c core.GoalContribution) (core.Goal, error)
	FetchContributions(ctx context.Context, goalID int64, limit int) ([]core.GoalContribution, error)
	FiredMilestones(ctx context.Context, goalID int64) (map[int]bool, error)
	RecordMilestones(ctx context.Context, goalID int64, thresholds []int) error

	// Predictions
	InsertPrediction(ctx context.Context, p core.Prediction) error
	FetchPrediction(ctx context.Context, id string) (core.Prediction, error)

	// Q&A history
	InsertQARecord(ctx context.Context, rec core.QARecord) error
	ListQAHistory(ctx context.Context, userID int64, limit int) ([]core.QARecord, error)

	// Export bookkeeping for the async worker.
	PendingTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
	PendingPredictions(ctx context.Context, limit int) ([]core.Prediction, error)
	MarkTransactionExport(ctx context.Context, id int64, state core.ExportState) error
	MarkPredictionExport(ctx context.Context, id string, state core.ExportState) error

	Close() error
}
