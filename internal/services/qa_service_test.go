package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func TestAskRoutesAndRecordsHistory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewQAService(store)

	seedIncome(t, store, 2026, 7, 1, 5000000)
	seedExpense(t, store, 2026, 7, 5, 1500000, "Rent")

	now := core.NewDate(2026, 7, 15)
	result, err := svc.Ask(ctx, 1, "How much can I save each month?", now)
	require.NoError(t, err)
	assert.Equal(t, "saving", result.Intent)
	assert.NotEmpty(t, result.Answer.Response)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "How much can I save each month?", history[0].Question)
	assert.Equal(t, result.Answer.Response, history[0].Answer)
}

func TestAskEmptyQuestion(t *testing.T) {
	svc := NewQAService(storage.NewMemoryStore())

	_, err := svc.Ask(context.Background(), 1, "   ", core.NewDate(2026, 7, 15))
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAskWithNoData(t *testing.T) {
	svc := NewQAService(storage.NewMemoryStore())

	result, err := svc.Ask(context.Background(), 1, "What should I do with my money?", core.NewDate(2026, 7, 15))
	require.NoError(t, err)
	assert.Equal(t, "general", result.Intent)
	assert.NotEmpty(t, result.Answer.Response)
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewQAService(store)
	now := core.NewDate(2026, 7, 15)

	_, err := svc.Ask(ctx, 1, "Can I afford a car?", now)
	require.NoError(t, err)
	_, err = svc.Ask(ctx, 1, "How is my budget?", now)
	require.NoError(t, err)

	history, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "How is my budget?", history[0].Question)
}
