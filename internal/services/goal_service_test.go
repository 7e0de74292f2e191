package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func newGoalService(store storage.Store) *GoalService {
	svc := NewGoalService(store)
	svc.now = fixedNow
	return svc
}

func validGoal() core.Goal {
	return core.Goal{
		UserID:       1,
		Name:         "Emergency fund",
		Type:         "savings",
		TargetAmount: core.Money{Cents: 1000000},
		StartDate:    core.NewDate(2026, 7, 1),
		TargetDate:   core.NewDate(2027, 7, 1),
		Priority:     "high",
	}
}

func TestCreateGoal(t *testing.T) {
	svc := newGoalService(storage.NewMemoryStore())

	saved, err := svc.Create(context.Background(), validGoal())
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, core.GoalActive, saved.Status)
}

func TestCreateGoalDefaultsStartDate(t *testing.T) {
	svc := newGoalService(storage.NewMemoryStore())

	g := validGoal()
	g.StartDate = core.Date{}
	saved, err := svc.Create(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, "2026-07-15", saved.StartDate.String())
}

func TestCreateGoalValidation(t *testing.T) {
	svc := newGoalService(storage.NewMemoryStore())

	tests := []struct {
		name    string
		mutate  func(*core.Goal)
		wantErr error
	}{
		{"empty name", func(g *core.Goal) { g.Name = "" }, core.ErrEmptyName},
		{"zero target", func(g *core.Goal) { g.TargetAmount.Cents = 0 }, core.ErrInvalidAmount},
		{"past target date", func(g *core.Goal) { g.TargetDate = core.NewDate(2026, 1, 1) }, core.ErrPastTargetDate},
		{"unknown priority", func(g *core.Goal) { g.Priority = "urgent" }, core.ErrUnknownPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGoal()
			tt.mutate(&g)
			_, err := svc.Create(context.Background(), g)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestContributeCompletesGoal(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newGoalService(store)

	goal, err := svc.Create(ctx, validGoal())
	require.NoError(t, err)

	summary, err := svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: goal.ID,
		Amount: core.Money{Cents: 400000},
		Date:   core.NewDate(2026, 7, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, core.GoalActive, summary.Goal.Status)
	assert.False(t, summary.Projection.Completed)

	summary, err = svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: goal.ID,
		Amount: core.Money{Cents: 600000},
		Date:   core.NewDate(2026, 7, 12),
	})
	require.NoError(t, err)
	assert.Equal(t, core.GoalCompleted, summary.Goal.Status)
	assert.True(t, summary.Projection.Completed)

	// A completed goal rejects further deposits.
	_, err = svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: goal.ID,
		Amount: core.Money{Cents: 100},
		Date:   core.NewDate(2026, 7, 13),
	})
	assert.ErrorIs(t, err, core.ErrGoalCompleted)
}

func TestContributeRecordsMilestonesOnce(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newGoalService(store)

	goal, err := svc.Create(ctx, validGoal())
	require.NoError(t, err)

	summary, err := svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: goal.ID,
		Amount: core.Money{Cents: 300000},
		Date:   core.NewDate(2026, 7, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{25}, summary.Projection.NewMilestones)

	// A later contribution below the next threshold fires nothing new.
	summary, err = svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: goal.ID,
		Amount: core.Money{Cents: 10000},
		Date:   core.NewDate(2026, 7, 11),
	})
	require.NoError(t, err)
	assert.Empty(t, summary.Projection.NewMilestones)

	// Crossing 50 fires only 50, not 25 again.
	summary, err = svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: goal.ID,
		Amount: core.Money{Cents: 200000},
		Date:   core.NewDate(2026, 7, 12),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{50}, summary.Projection.NewMilestones)
}

func TestContributeValidation(t *testing.T) {
	ctx := context.Background()
	svc := newGoalService(storage.NewMemoryStore())

	goal, err := svc.Create(ctx, validGoal())
	require.NoError(t, err)

	_, err = svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: goal.ID,
		Amount: core.Money{Cents: 0},
	})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = svc.Contribute(ctx, 2, core.GoalContribution{
		GoalID: goal.ID,
		Amount: core.Money{Cents: 100},
	})
	assert.ErrorIs(t, err, core.ErrGoalNotFound)
}

func TestUpdateGoalKeepsAmountState(t *testing.T) {
	ctx := context.Background()
	svc := newGoalService(storage.NewMemoryStore())

	goal, err := svc.Create(ctx, validGoal())
	require.NoError(t, err)
	_, err = svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: goal.ID,
		Amount: core.Money{Cents: 250000},
		Date:   core.NewDate(2026, 7, 10),
	})
	require.NoError(t, err)

	edited := goal
	edited.Name = "Rainy day fund"
	edited.TargetAmount = core.Money{Cents: 2000000}
	edited.CurrentAmount = core.Money{Cents: 999999} // must be ignored

	updated, err := svc.Update(ctx, 1, edited)
	require.NoError(t, err)
	assert.Equal(t, "Rainy day fund", updated.Name)
	assert.Equal(t, int64(2000000), updated.TargetAmount.Cents)
	assert.Equal(t, int64(250000), updated.CurrentAmount.Cents)
}

func TestGoalStats(t *testing.T) {
	ctx := context.Background()
	svc := newGoalService(storage.NewMemoryStore())

	first, err := svc.Create(ctx, validGoal())
	require.NoError(t, err)

	second := validGoal()
	second.Name = "New laptop"
	second.TargetAmount = core.Money{Cents: 200000}
	secondSaved, err := svc.Create(ctx, second)
	require.NoError(t, err)

	_, err = svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: first.ID, Amount: core.Money{Cents: 500000}, Date: core.NewDate(2026, 7, 10),
	})
	require.NoError(t, err)
	_, err = svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: secondSaved.ID, Amount: core.Money{Cents: 200000}, Date: core.NewDate(2026, 7, 10),
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalGoals)
	assert.Equal(t, 1, stats.ActiveGoals)
	assert.Equal(t, 1, stats.CompletedGoals)
	assert.Equal(t, int64(1200000), stats.TotalTarget.Cents)
	assert.Equal(t, int64(700000), stats.TotalSaved.Cents)
	assert.InDelta(t, 75.0, stats.AvgProgressPct, 1e-9)
}

func TestGoalSuggestions(t *testing.T) {
	ctx := context.Background()
	svc := newGoalService(storage.NewMemoryStore())

	g := validGoal()
	g.TargetDate = core.NewDate(2026, 8, 1)
	_, err := svc.Create(ctx, g)
	require.NoError(t, err)

	suggestions, err := svc.Suggestions(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Contains(t, suggestions[0], "Less than a month")
}

func TestGoalListScopedToUser(t *testing.T) {
	ctx := context.Background()
	svc := newGoalService(storage.NewMemoryStore())

	_, err := svc.Create(ctx, validGoal())
	require.NoError(t, err)

	other := validGoal()
	other.UserID = 2
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	mine, err := svc.List(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	// Uses the list projection too.
	assert.False(t, mine[0].Projection.Completed)
	assert.Positive(t, mine[0].Projection.DaysRemaining)
}

func TestGoalDetails(t *testing.T) {
	ctx := context.Background()
	svc := newGoalService(storage.NewMemoryStore())

	goal, err := svc.Create(ctx, validGoal())
	require.NoError(t, err)
	_, err = svc.Contribute(ctx, 1, core.GoalContribution{
		GoalID: goal.ID, Amount: core.Money{Cents: 100000}, Date: core.NewDate(2026, 7, 10),
	})
	require.NoError(t, err)

	details, err := svc.Details(ctx, goal.ID, 1)
	require.NoError(t, err)
	assert.Len(t, details.Contributions, 1)
	assert.InDelta(t, 10.0, details.Projection.ProgressPct, 1e-9)

	_, err = svc.Details(ctx, goal.ID, 99)
	assert.ErrorIs(t, err, core.ErrGoalNotFound)
}
