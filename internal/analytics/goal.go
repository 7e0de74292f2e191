package analytics

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Milestone thresholds, percent of target. Each fires once per goal.
var milestoneThresholds = []int{25, 50, 75}

const onTrackTolerancePts = 10

// GoalProjection reports how a goal is progressing and what it takes
// to finish it by the target date.
type GoalProjection struct {
	Remaining           float64
	ProgressPct         float64
	ExpectedProgressPct float64
	DaysRemaining       int
	MonthsRemaining     float64
	MonthlyRequired     float64
	OnTrack             bool
	Completed           bool
	// ProjectedCompletion is nil when no contribution history exists
	// to extrapolate from.
	ProjectedCompletion *core.Date
	// NewMilestones lists thresholds crossed for the first time; the
	// caller records them so they never fire again.
	NewMilestones []int
	Suggestions   []string
}

// ProjectGoal computes completion projections for one goal.
//
// Months remaining is days/30, a deliberate calendar approximation.
// When the deadline has passed the whole remainder is due immediately.
// The projected completion date extrapolates the average daily
// contribution since the goal started. A goal is on track while its
// actual progress is within 10 points of the time-proportional
// expectation. fired holds milestone thresholds already announced for
// this goal.
func ProjectGoal(goal core.Goal, contributions []core.GoalContribution, fired map[int]bool, now time.Time) GoalProjection {
	p := GoalProjection{
		Remaining:   goal.Remaining().Units(),
		ProgressPct: goal.ProgressPct(),
	}

	if p.Remaining <= 0 {
		p.Completed = true
		p.OnTrack = true
		p.ProgressPct = 100
		p.Suggestions = append(p.Suggestions,
			fmt.Sprintf("Congratulations! You have reached your goal '%s'.", goal.Name))
		return p
	}

	today := core.DateOf(now)
	p.DaysRemaining = daysBetween(today, goal.TargetDate)
	p.MonthsRemaining = float64(p.DaysRemaining) / 30

	if p.MonthsRemaining > 0 {
		p.MonthlyRequired = p.Remaining / p.MonthsRemaining
	} else {
		p.MonthlyRequired = p.Remaining
	}

	daysElapsed := daysBetween(goal.StartDate, today)
	if len(contributions) > 0 && daysElapsed > 0 {
		avgDaily := goal.CurrentAmount.Units() / float64(daysElapsed)
		if avgDaily > 0 {
			daysToFinish := int(p.Remaining / avgDaily)
			projected := core.DateOf(now.AddDate(0, 0, daysToFinish))
			p.ProjectedCompletion = &projected
		}
	}

	if daysElapsed+p.DaysRemaining > 0 {
		p.ExpectedProgressPct = float64(daysElapsed) / float64(daysElapsed+p.DaysRemaining) * 100
	}
	p.OnTrack = p.ProgressPct >= p.ExpectedProgressPct-onTrackTolerancePts

	for _, threshold := range milestoneThresholds {
		if p.ProgressPct >= float64(threshold) && !fired[threshold] {
			p.NewMilestones = append(p.NewMilestones, threshold)
			p.Suggestions = append(p.Suggestions,
				fmt.Sprintf("Milestone reached: you are %d%% of the way to '%s'.", threshold, goal.Name))
		}
	}

	switch {
	case p.DaysRemaining < 0:
		p.Suggestions = append(p.Suggestions,
			fmt.Sprintf("The target date for '%s' has passed. Consider extending the deadline or adding %.2f to finish.", goal.Name, p.Remaining))
	case p.DaysRemaining < 30:
		p.Suggestions = append(p.Suggestions,
			fmt.Sprintf("Less than a month left for '%s'. You need %.2f to reach the target.", goal.Name, p.Remaining))
	case p.DaysRemaining < 90:
		p.Suggestions = append(p.Suggestions,
			fmt.Sprintf("About %d days left for '%s'. Setting aside %.2f per month keeps you on schedule.", p.DaysRemaining, goal.Name, p.MonthlyRequired))
	}

	if !p.OnTrack {
		p.Suggestions = append(p.Suggestions,
			fmt.Sprintf("You are behind schedule on '%s'. Increasing contributions to %.2f per month would get you back on track.", goal.Name, p.MonthlyRequired))
	}

	return p
}

func daysBetween(from, to core.Date) int {
	return int(to.Sub(from.Time).Hours() / 24)
}
