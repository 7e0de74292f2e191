package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func testGoal(targetCents, currentCents int64) core.Goal {
	return core.Goal{
		ID:            1,
		Name:          "Vacation",
		TargetAmount:  core.Money{Cents: targetCents},
		CurrentAmount: core.Money{Cents: currentCents},
		StartDate:     core.NewDate(2026, 1, 1),
		TargetDate:    core.NewDate(2026, 12, 31),
		Status:        core.GoalActive,
	}
}

func contribution(cents int64, year, month, day int) core.GoalContribution {
	return core.GoalContribution{
		GoalID: 1,
		Amount: core.Money{Cents: cents},
		Date:   core.NewDate(year, month, day),
	}
}

func TestProjectGoalCompleted(t *testing.T) {
	goal := testGoal(1000000, 1000000)
	p := ProjectGoal(goal, nil, nil, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, p.Completed)
	assert.True(t, p.OnTrack)
	assert.Equal(t, 100.0, p.ProgressPct)
	require.NotEmpty(t, p.Suggestions)
	assert.Contains(t, p.Suggestions[0], "Congratulations")
}

func TestProjectGoalCompletedEvenPastDeadline(t *testing.T) {
	goal := testGoal(1000000, 1200000)
	p := ProjectGoal(goal, nil, nil, time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, p.Completed)
}

func TestProjectGoalMonthlyRequired(t *testing.T) {
	goal := testGoal(1000000, 400000)
	now := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC) // 180 days to target

	p := ProjectGoal(goal, []core.GoalContribution{contribution(400000, 2026, 3, 1)}, nil, now)

	assert.False(t, p.Completed)
	assert.Equal(t, 6000.0, p.Remaining)
	assert.Equal(t, 180, p.DaysRemaining)
	assert.InDelta(t, 6.0, p.MonthsRemaining, 1e-9)
	assert.InDelta(t, 1000.0, p.MonthlyRequired, 1e-9)
}

func TestProjectGoalDeadlinePassed(t *testing.T) {
	goal := testGoal(1000000, 400000)
	now := time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)

	p := ProjectGoal(goal, nil, nil, now)
	assert.Negative(t, p.DaysRemaining)
	assert.Equal(t, p.Remaining, p.MonthlyRequired)
}

func TestProjectGoalProjectedCompletion(t *testing.T) {
	goal := testGoal(1000000, 500000)
	now := time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC) // 100 days elapsed

	contribs := []core.GoalContribution{contribution(500000, 2026, 2, 1)}
	p := ProjectGoal(goal, contribs, nil, now)

	// 5000 saved over 100 days = 50/day; 5000 remaining = 100 more days.
	require.NotNil(t, p.ProjectedCompletion)
	assert.Equal(t, "2026-07-20", p.ProjectedCompletion.String())
}

func TestProjectGoalNoContributionsNoProjection(t *testing.T) {
	goal := testGoal(1000000, 0)
	p := ProjectGoal(goal, nil, nil, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Nil(t, p.ProjectedCompletion)
}

func TestProjectGoalOnTrackBand(t *testing.T) {
	now := time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC)
	// Start Jan 1, target Dec 31: 182 elapsed of 364, expected 50%.

	behind := testGoal(1000000, 390000) // 39% < 50 - 10
	p := ProjectGoal(behind, []core.GoalContribution{contribution(390000, 2026, 2, 1)}, nil, now)
	assert.False(t, p.OnTrack)

	within := testGoal(1000000, 410000) // 41% >= 50 - 10
	p = ProjectGoal(within, []core.GoalContribution{contribution(410000, 2026, 2, 1)}, nil, now)
	assert.True(t, p.OnTrack)
}

func TestProjectGoalMilestonesFireOnce(t *testing.T) {
	goal := testGoal(1000000, 550000)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	p := ProjectGoal(goal, []core.GoalContribution{contribution(550000, 2026, 2, 1)}, nil, now)
	assert.Equal(t, []int{25, 50}, p.NewMilestones)

	fired := map[int]bool{25: true, 50: true}
	p = ProjectGoal(goal, []core.GoalContribution{contribution(550000, 2026, 2, 1)}, fired, now)
	assert.Empty(t, p.NewMilestones)
}

func TestProjectGoalDeadlineSuggestions(t *testing.T) {
	goal := testGoal(1000000, 500000)
	goal.TargetDate = core.NewDate(2026, 6, 20)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	p := ProjectGoal(goal, []core.GoalContribution{contribution(500000, 2026, 2, 1)}, map[int]bool{25: true, 50: true}, now)
	require.NotEmpty(t, p.Suggestions)
	assert.Contains(t, p.Suggestions[0], "Less than a month")
}
