// Package services orchestrates storage, analytics and AMQP for the
// HTTP layer. Writes are local-first: SQLite is authoritative and the
// export event is published best-effort afterwards.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// LedgerPublisher publishes export events for newly written rows.
type LedgerPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
}

// TransactionService records ledger transactions.
type TransactionService struct {
	store     storage.Store
	publisher LedgerPublisher
}

func NewTransactionService(store storage.Store, publisher LedgerPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

// Create validates and saves a transaction, then publishes an export
// event. Publish failures are logged, not returned; the worker's
// pending scan recovers the row.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.InsertTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publish(ctx, amqp.NewTransactionEvent(saved.ID, saved.UserID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", saved.ID, "error", err)
		// Don't fail the request, the row is saved locally.
	}

	return saved, nil
}

func (s *TransactionService) publish(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Publisher not available, skipping ledger event")
		return nil
	}
	return s.publisher.PublishLedgerEvent(ctx, msg)
}
