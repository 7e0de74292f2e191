package worker

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export/memory"
	"fintrack/internal/storage"
)

func seedTransaction(t *testing.T, store storage.Store) core.Transaction {
	t.Helper()
	tx, err := store.InsertTransaction(context.Background(), core.Transaction{
		UserID:   1,
		Date:     core.NewDate(2026, 5, 10),
		Type:     core.Expense,
		Amount:   core.Money{Cents: 4500},
		Category: "Food",
		Merchant: "Corner shop",
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return tx
}

func TestHandleLedgerEventTransaction(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	backend := memory.New()
	w := NewExportWorker(store, backend, 10)

	tx := seedTransaction(t, store)

	if err := w.HandleLedgerEvent(ctx, amqp.NewTransactionEvent(tx.ID, tx.UserID)); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	rows := backend.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Kind != amqp.EntityTransaction {
		t.Errorf("row kind = %s", rows[0].Kind)
	}
	if rows[0].Values[0] != "2026-05-10" {
		t.Errorf("row date = %v", rows[0].Values[0])
	}

	pending, _ := store.PendingTransactions(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("transaction still pending after export")
	}
}

func TestHandleLedgerEventPrediction(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	backend := memory.New()
	w := NewExportWorker(store, backend, 10)

	p := core.Prediction{
		ID: "pred-1", UserID: 1, Type: core.MonthlyExpense,
		Value: 1234.5, TargetDate: core.NewDate(2026, 7, 1), Confidence: 0.8,
	}
	if err := store.InsertPrediction(ctx, p); err != nil {
		t.Fatalf("insert prediction: %v", err)
	}

	if err := w.HandleLedgerEvent(ctx, amqp.NewPredictionEvent(p.ID, p.UserID)); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if rows := backend.Rows(); len(rows) != 1 || rows[0].Kind != amqp.EntityPrediction {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestHandleLedgerEventUnknownEntityDropped(t *testing.T) {
	w := NewExportWorker(storage.NewMemoryStore(), memory.New(), 10)
	msg := &amqp.LedgerEventMessage{Entity: "unknown"}
	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Errorf("unknown entity must not requeue, got %v", err)
	}
}

func TestHandleLedgerEventAppendFailure(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	backend := memory.New()
	backend.FailWith(errors.New("quota exceeded"))
	w := NewExportWorker(store, backend, 10)

	tx := seedTransaction(t, store)

	if err := w.HandleLedgerEvent(ctx, amqp.NewTransactionEvent(tx.ID, tx.UserID)); err == nil {
		t.Fatal("want error when backend append fails")
	}
	// Marked error, so the pending scan stops retrying it.
	pending, _ := store.PendingTransactions(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("failed export must leave error state, not pending")
	}
}

func TestProcessPending(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	backend := memory.New()
	w := NewExportWorker(store, backend, 10)

	seedTransaction(t, store)
	seedTransaction(t, store)
	if err := store.InsertPrediction(ctx, core.Prediction{
		ID: "pred-1", UserID: 1, Type: core.MonthlySavings,
		Value: 300, TargetDate: core.NewDate(2026, 7, 1), Confidence: 0.75,
	}); err != nil {
		t.Fatalf("insert prediction: %v", err)
	}

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if got := len(backend.Rows()); got != 3 {
		t.Errorf("exported %d rows, want 3", got)
	}

	// A second scan finds nothing left.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if got := len(backend.Rows()); got != 3 {
		t.Errorf("second scan re-exported rows: %d", got)
	}
}
