package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

const (
	MonthlyExpense PredictionType = "monthly_expense"
	MonthlySavings PredictionType = "monthly_savings"
)

// Export states for rows mirrored to the external spreadsheet backend.
const (
	ExportPending ExportState = "pending"
	ExportDone    ExportState = "exported"
	ExportError   ExportState = "error"
)

type (
	TransactionType string
	GoalStatus      string
	PredictionType  string
	ExportState     string

	Date struct {
		time.Time
	}

	// Transaction is an immutable ledger fact. It is never mutated after
	// creation; the only delete path is the bulk user-data clear.
	Transaction struct {
		ID       int64
		UserID   int64
		Date     Date
		Type     TransactionType
		Amount   Money
		Category string
		Merchant string
	}

	// Goal is a savings target. CurrentAmount is a transactional cache of
	// the summed contributions; the contribution ledger is authoritative.
	Goal struct {
		ID            int64
		UserID        int64
		Name          string
		Type          string
		TargetAmount  Money
		CurrentAmount Money
		StartDate     Date
		TargetDate    Date
		Category      string
		Description   string
		Priority      string
		Status        GoalStatus
	}

	// GoalContribution is an append-only deposit event toward a goal.
	GoalContribution struct {
		ID     int64
		GoalID int64
		Amount Money
		Date   Date
		Notes  string
	}

	// Prediction is a persisted forecast record. History accumulates;
	// records are never updated or deleted.
	Prediction struct {
		ID         string
		UserID     int64
		Type       PredictionType
		Value      float64
		TargetDate Date
		Confidence float64
	}

	QARecord struct {
		ID        int64
		UserID    int64
		Question  string
		Answer    string
		CreatedAt time.Time
	}

	GoalStats struct {
		TotalGoals     int
		ActiveGoals    int
		CompletedGoals int
		TotalTarget    Money
		TotalSaved     Money
		AvgProgressPct float64
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrPastTargetDate  = errors.New("target date must be in the future")
	ErrGoalNotFound    = errors.New("goal not found")
	ErrGoalCompleted   = errors.New("goal already completed")
	ErrNotFound        = errors.New("not found")
	ErrUnknownPriority = errors.New("unknown priority")
)

var priorities = map[string]bool{"low": true, "medium": true, "high": true}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthStart returns the first day of the date's month.
func (d Date) MonthStart() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if err := g.TargetDate.Validate(); err != nil {
		return err
	}
	if g.Priority != "" && !priorities[g.Priority] {
		return ErrUnknownPriority
	}
	return nil
}

// ValidateDates checks that the target date lies after now. Split from
// Validate so stored goals with past deadlines still load.
func (g Goal) ValidateDates(now time.Time) error {
	if !g.TargetDate.After(now) {
		return ErrPastTargetDate
	}
	return nil
}

// ProgressPct returns completion as a percentage of the target.
func (g Goal) ProgressPct() float64 {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	return float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
}

// Remaining returns the amount still needed to reach the target.
// Negative values mean the goal is overfunded.
func (g Goal) Remaining() Money {
	return Money{Cents: g.TargetAmount.Cents - g.CurrentAmount.Cents}
}

func (c GoalContribution) Validate() error {
	if c.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if err := c.Date.Validate(); err != nil {
		return err
	}
	return nil
}
