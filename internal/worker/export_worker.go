// Package worker mirrors newly written ledger rows (transactions,
// predictions) to the export backend. AMQP events drive the fast path;
// a periodic pending scan recovers rows whose events were lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/storage"
)

type ExportWorker struct {
	store     storage.Store
	appender  export.RowAppender
	batchSize int
}

func NewExportWorker(store storage.Store, appender export.RowAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleLedgerEvent processes one export event from AMQP. Returned
// errors requeue the message.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	switch msg.Entity {
	case amqp.EntityTransaction:
		tx, err := w.store.FetchTransaction(ctx, msg.TransactionID, msg.UserID)
		if err != nil {
			return fmt.Errorf("fetch transaction %d: %w", msg.TransactionID, err)
		}
		return w.exportTransaction(ctx, tx)
	case amqp.EntityPrediction:
		p, err := w.store.FetchPrediction(ctx, msg.PredictionID)
		if err != nil {
			return fmt.Errorf("fetch prediction %s: %w", msg.PredictionID, err)
		}
		return w.exportPrediction(ctx, p)
	default:
		// Unknown entity kinds are dropped, not requeued.
		slog.WarnContext(ctx, "Unknown ledger entity in event", "entity", msg.Entity)
		return nil
	}
}

// ProcessPending exports rows still marked pending. Backup mechanism
// for lost AMQP messages; failures are logged and retried next tick.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	txns, err := w.store.PendingTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("pending transactions: %w", err)
	}
	preds, err := w.store.PendingPredictions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("pending predictions: %w", err)
	}
	if len(txns) == 0 && len(preds) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports",
		"transactions", len(txns), "predictions", len(preds))

	for _, tx := range txns {
		if err := w.exportTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", tx.ID, "error", err)
		}
	}
	for _, p := range preds {
		if err := w.exportPrediction(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to export prediction", "id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck runs one larger pending scan at worker startup to
// recover from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	saved := w.batchSize
	w.batchSize = saved * 5
	err := w.ProcessPending(ctx)
	w.batchSize = saved
	if err != nil {
		return fmt.Errorf("startup pending scan: %w", err)
	}
	return nil
}

func (w *ExportWorker) exportTransaction(ctx context.Context, tx core.Transaction) error {
	row := export.Row{
		Kind: amqp.EntityTransaction,
		Ref:  fmt.Sprintf("transaction/%d", tx.ID),
		Values: []any{
			tx.Date.String(),
			string(tx.Type),
			tx.Amount.Units(),
			tx.Category,
			tx.Merchant,
			tx.UserID,
		},
	}

	if err := w.appender.Append(ctx, row); err != nil {
		if markErr := w.store.MarkTransactionExport(ctx, tx.ID, core.ExportError); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append transaction row: %w", err)
	}

	if err := w.store.MarkTransactionExport(ctx, tx.ID, core.ExportDone); err != nil {
		// The export itself worked; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark transaction exported", "id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", tx.ID, "category", tx.Category, "amount_cents", tx.Amount.Cents)
	return nil
}

func (w *ExportWorker) exportPrediction(ctx context.Context, p core.Prediction) error {
	row := export.Row{
		Kind: amqp.EntityPrediction,
		Ref:  "prediction/" + p.ID,
		Values: []any{
			p.TargetDate.String(),
			string(p.Type),
			p.Value,
			p.Confidence,
			p.UserID,
		},
	}

	if err := w.appender.Append(ctx, row); err != nil {
		if markErr := w.store.MarkPredictionExport(ctx, p.ID, core.ExportError); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", markErr)
		}
		return fmt.Errorf("append prediction row: %w", err)
	}

	if err := w.store.MarkPredictionExport(ctx, p.ID, core.ExportDone); err != nil {
		slog.ErrorContext(ctx, "Failed to mark prediction exported", "id", p.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported prediction",
		"id", p.ID, "type", string(p.Type))
	return nil
}
