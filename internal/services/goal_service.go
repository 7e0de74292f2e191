package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const contributionFetchLimit = 200

// GoalSummary is a goal plus its current projection, the shape the
// list and details endpoints serve.
type GoalSummary struct {
	Goal       core.Goal
	Projection analytics.GoalProjection
}

// GoalDetails adds the contribution history to the summary.
type GoalDetails struct {
	GoalSummary
	Contributions []core.GoalContribution
}

// GoalService manages savings goals and their projections.
type GoalService struct {
	store storage.Store
	now   func() time.Time
}

func NewGoalService(store storage.Store) *GoalService {
	return &GoalService{
		store: store,
		now:   time.Now,
	}
}

// Create validates and stores a new goal. The target date must lie in
// the future at creation time.
func (s *GoalService) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := g.ValidateDates(s.now()); err != nil {
		return core.Goal{}, err
	}
	if g.StartDate.IsZero() {
		g.StartDate = core.DateOf(s.now())
	}
	g.Status = core.GoalActive

	saved, err := s.store.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return saved, nil
}

// List returns the user's goals with projections. An empty status
// means all goals.
func (s *GoalService) List(ctx context.Context, userID int64, status core.GoalStatus) ([]GoalSummary, error) {
	goals, err := s.store.ListGoals(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	summaries := make([]GoalSummary, 0, len(goals))
	for _, g := range goals {
		projection, err := s.project(ctx, g)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, GoalSummary{Goal: g, Projection: projection})
	}
	return summaries, nil
}

// Details returns one goal with its contribution history and
// projection.
func (s *GoalService) Details(ctx context.Context, goalID, userID int64) (GoalDetails, error) {
	g, err := s.store.FetchGoal(ctx, goalID, userID)
	if err != nil {
		return GoalDetails{}, err
	}

	contributions, err := s.store.FetchContributions(ctx, g.ID, contributionFetchLimit)
	if err != nil {
		return GoalDetails{}, fmt.Errorf("fetch contributions: %w", err)
	}

	projection, err := s.project(ctx, g)
	if err != nil {
		return GoalDetails{}, err
	}

	return GoalDetails{
		GoalSummary:   GoalSummary{Goal: g, Projection: projection},
		Contributions: contributions,
	}, nil
}

// Update applies editable fields to an existing goal. Amount-derived
// state (current amount, status) is owned by the contribution path and
// never touched here.
func (s *GoalService) Update(ctx context.Context, userID int64, g core.Goal) (core.Goal, error) {
	existing, err := s.store.FetchGoal(ctx, g.ID, userID)
	if err != nil {
		return core.Goal{}, err
	}

	existing.Name = g.Name
	existing.Type = g.Type
	existing.TargetAmount = g.TargetAmount
	existing.TargetDate = g.TargetDate
	existing.Category = g.Category
	existing.Description = g.Description
	existing.Priority = g.Priority
	if err := existing.Validate(); err != nil {
		return core.Goal{}, err
	}

	if err := s.store.UpdateGoal(ctx, existing); err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return existing, nil
}

// Delete removes a goal and its contributions.
func (s *GoalService) Delete(ctx context.Context, goalID, userID int64) error {
	return s.store.DeleteGoal(ctx, goalID, userID)
}

// Contribute appends a deposit toward the goal. Storage recomputes the
// goal total and applies the completed transition atomically; newly
// crossed milestones are recorded so they never fire again.
func (s *GoalService) Contribute(ctx context.Context, userID int64, c core.GoalContribution) (GoalSummary, error) {
	if c.Date.IsZero() {
		c.Date = core.DateOf(s.now())
	}
	if err := c.Validate(); err != nil {
		return GoalSummary{}, err
	}

	goal, err := s.store.AddContribution(ctx, userID, c)
	if err != nil {
		return GoalSummary{}, err
	}

	projection, err := s.project(ctx, goal)
	if err != nil {
		return GoalSummary{}, err
	}

	if len(projection.NewMilestones) > 0 {
		if err := s.store.RecordMilestones(ctx, goal.ID, projection.NewMilestones); err != nil {
			slog.ErrorContext(ctx, "Failed to record goal milestones",
				"goal_id", goal.ID, "error", err)
		}
	}

	return GoalSummary{Goal: goal, Projection: projection}, nil
}

// Stats aggregates counts, totals and average progress across all of
// the user's goals.
func (s *GoalService) Stats(ctx context.Context, userID int64) (core.GoalStats, error) {
	goals, err := s.store.ListGoals(ctx, userID, "")
	if err != nil {
		return core.GoalStats{}, fmt.Errorf("list goals: %w", err)
	}

	stats := core.GoalStats{TotalGoals: len(goals)}
	progressSum := 0.0
	for _, g := range goals {
		switch g.Status {
		case core.GoalCompleted:
			stats.CompletedGoals++
		default:
			stats.ActiveGoals++
		}
		stats.TotalTarget = stats.TotalTarget.Add(g.TargetAmount)
		stats.TotalSaved = stats.TotalSaved.Add(g.CurrentAmount)
		pct := g.ProgressPct()
		if pct > 100 {
			pct = 100
		}
		progressSum += pct
	}
	if len(goals) > 0 {
		stats.AvgProgressPct = progressSum / float64(len(goals))
	}
	return stats, nil
}

// Suggestions collects projection suggestions across active goals, the
// feed the dashboard shows.
func (s *GoalService) Suggestions(ctx context.Context, userID int64) ([]string, error) {
	summaries, err := s.List(ctx, userID, core.GoalActive)
	if err != nil {
		return nil, err
	}

	var suggestions []string
	for _, sum := range summaries {
		suggestions = append(suggestions, sum.Projection.Suggestions...)
	}
	return suggestions, nil
}

func (s *GoalService) project(ctx context.Context, g core.Goal) (analytics.GoalProjection, error) {
	contributions, err := s.store.FetchContributions(ctx, g.ID, contributionFetchLimit)
	if err != nil {
		return analytics.GoalProjection{}, fmt.Errorf("fetch contributions: %w", err)
	}
	fired, err := s.store.FiredMilestones(ctx, g.ID)
	if err != nil {
		return analytics.GoalProjection{}, fmt.Errorf("fetch milestones: %w", err)
	}
	return analytics.ProjectGoal(g, contributions, fired, s.now()), nil
}
