package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// capturePublisher records published events and optionally fails.
type capturePublisher struct {
	events []*amqp.LedgerEventMessage
	err    error
}

func (p *capturePublisher) PublishLedgerEvent(_ context.Context, msg *amqp.LedgerEventMessage) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, msg)
	return nil
}

func validTransaction() core.Transaction {
	return core.Transaction{
		UserID:   1,
		Date:     core.NewDate(2026, 5, 10),
		Type:     core.Expense,
		Amount:   core.Money{Cents: 4500},
		Category: "Food",
		Merchant: "Corner shop",
	}
}

func TestCreateTransactionPublishesEvent(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &capturePublisher{}
	svc := NewTransactionService(store, pub)

	saved, err := svc.Create(context.Background(), validTransaction())
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, amqp.EntityTransaction, pub.events[0].Entity)
	assert.Equal(t, saved.ID, pub.events[0].TransactionID)
	assert.Equal(t, int64(1), pub.events[0].UserID)
}

func TestCreateTransactionValidation(t *testing.T) {
	svc := NewTransactionService(storage.NewMemoryStore(), nil)

	tests := []struct {
		name    string
		mutate  func(*core.Transaction)
		wantErr error
	}{
		{"negative amount", func(tx *core.Transaction) { tx.Amount.Cents = -1 }, core.ErrInvalidAmount},
		{"bad type", func(tx *core.Transaction) { tx.Type = "transfer" }, core.ErrInvalidType},
		{"empty category", func(tx *core.Transaction) { tx.Category = " " }, core.ErrEmptyCategory},
		{"zero date", func(tx *core.Transaction) { tx.Date = core.Date{} }, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			_, err := svc.Create(context.Background(), tx)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateTransactionSurvivesPublishFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	pub := &capturePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store, pub)

	saved, err := svc.Create(context.Background(), validTransaction())
	require.NoError(t, err)

	// The row is saved and stays pending for the backup scan.
	pending, err := store.PendingTransactions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, saved.ID, pending[0].ID)
}

func TestCreateTransactionWithoutPublisher(t *testing.T) {
	svc := NewTransactionService(storage.NewMemoryStore(), nil)
	_, err := svc.Create(context.Background(), validTransaction())
	assert.NoError(t, err)
}
