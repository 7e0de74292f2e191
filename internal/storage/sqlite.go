package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

const dateLayout = "2006-01-02"

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database, pings it and applies migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func parseDate(v string) (core.Date, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", v, err)
	}
	return core.Date{Time: t}, nil
}

func (s *SQLiteStore) InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, date, transaction_type, amount_cents, category, merchant)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Date.String(), string(tx.Type), tx.Amount.Cents, tx.Category, tx.Merchant)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	tx.ID = id
	return tx, nil
}

func (s *SQLiteStore) FetchTransaction(ctx context.Context, id, userID int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, transaction_type, amount_cents, category, merchant
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("fetch transaction %d: %w", id, err)
	}
	return tx, nil
}

func (s *SQLiteStore) FetchTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, user_id, date, transaction_type, amount_cents, category, merchant
		FROM transactions WHERE user_id = ?`)
	args := []any{userID}

	if f.Type != "" {
		sb.WriteString(" AND transaction_type = ?")
		args = append(args, string(f.Type))
	}
	if len(f.Categories) > 0 {
		sb.WriteString(" AND category IN (?" + strings.Repeat(", ?", len(f.Categories)-1) + ")")
		for _, c := range f.Categories {
			args = append(args, c)
		}
	}
	if f.Descending {
		sb.WriteString(" ORDER BY date DESC, id DESC")
	} else {
		sb.WriteString(" ORDER BY date ASC, id ASC")
	}
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var tx core.Transaction
	var date, txType string
	var cents int64
	if err := row.Scan(&tx.ID, &tx.UserID, &date, &txType, &cents, &tx.Category, &tx.Merchant); err != nil {
		return core.Transaction{}, err
	}
	d, err := parseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Date = d
	tx.Type = core.TransactionType(txType)
	tx.Amount = core.Money{Cents: cents}
	return tx, nil
}

func (s *SQLiteStore) ClearUserData(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("clear user data: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear user data rows: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (user_id, goal_name, goal_type, target_amount_cents, current_amount_cents,
			start_date, target_date, category, description, priority, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Type, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		g.StartDate.String(), g.TargetDate.String(), g.Category, g.Description, g.Priority, string(g.Status))
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal id: %w", err)
	}
	g.ID = id
	return g, nil
}

const goalColumns = `id, user_id, goal_name, goal_type, target_amount_cents, current_amount_cents,
	start_date, target_date, category, description, priority, status`

func scanGoal(row scanner) (core.Goal, error) {
	var g core.Goal
	var targetCents, curCents int64
	var start, target, status string
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Type, &targetCents, &curCents,
		&start, &target, &g.Category, &g.Description, &g.Priority, &status); err != nil {
		return core.Goal{}, err
	}
	startDate, err := parseDate(start)
	if err != nil {
		return core.Goal{}, err
	}
	targetDate, err := parseDate(target)
	if err != nil {
		return core.Goal{}, err
	}
	g.TargetAmount = core.Money{Cents: targetCents}
	g.CurrentAmount = core.Money{Cents: curCents}
	g.StartDate = startDate
	g.TargetDate = targetDate
	g.Status = core.GoalStatus(status)
	return g, nil
}

func (s *SQLiteStore) FetchGoal(ctx context.Context, goalID, userID int64) (core.Goal, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE id = ? AND user_id = ?", goalID, userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.ErrGoalNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("fetch goal %d: %w", goalID, err)
	}
	return g, nil
}

func (s *SQLiteStore) ListGoals(ctx context.Context, userID int64, status core.GoalStatus) ([]core.Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE user_id = ?"
	args := []any{userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY target_date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE goals SET goal_name = ?, goal_type = ?, target_amount_cents = ?,
			target_date = ?, category = ?, description = ?, priority = ?
		WHERE id = ? AND user_id = ?`,
		g.Name, g.Type, g.TargetAmount.Cents, g.TargetDate.String(),
		g.Category, g.Description, g.Priority, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("update goal %d: %w", g.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal rows: %w", err)
	}
	if n == 0 {
		return core.ErrGoalNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteGoal(ctx context.Context, goalID, userID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM goals WHERE id = ? AND user_id = ?", goalID, userID)
	if err != nil {
		return fmt.Errorf("delete goal %d: %w", goalID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal rows: %w", err)
	}
	if n == 0 {
		return core.ErrGoalNotFound
	}
	return nil
}

// AddContribution appends a contribution and synchronizes the goal in
// one transaction: current_amount_cents is rewritten from the summed
// contribution ledger, and the goal flips to completed when the total
// reaches the target.
func (s *SQLiteStore) AddContribution(ctx context.Context, userID int64, c core.GoalContribution) (core.Goal, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Goal{}, fmt.Errorf("begin contribution tx: %w", err)
	}
	defer dbTx.Rollback()

	row := dbTx.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE id = ? AND user_id = ?", c.GoalID, userID)
	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, core.ErrGoalNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("fetch goal %d: %w", c.GoalID, err)
	}
	if goal.Status == core.GoalCompleted {
		return core.Goal{}, core.ErrGoalCompleted
	}

	if _, err := dbTx.ExecContext(ctx, `
		INSERT INTO goal_contributions (goal_id, amount_cents, contribution_date, notes)
		VALUES (?, ?, ?, ?)`,
		c.GoalID, c.Amount.Cents, c.Date.String(), c.Notes); err != nil {
		return core.Goal{}, fmt.Errorf("insert contribution: %w", err)
	}

	var totalCents int64
	if err := dbTx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM goal_contributions WHERE goal_id = ?",
		c.GoalID).Scan(&totalCents); err != nil {
		return core.Goal{}, fmt.Errorf("sum contributions: %w", err)
	}

	status := core.GoalActive
	if totalCents >= goal.TargetAmount.Cents {
		status = core.GoalCompleted
	}
	if _, err := dbTx.ExecContext(ctx,
		"UPDATE goals SET current_amount_cents = ?, status = ? WHERE id = ?",
		totalCents, string(status), c.GoalID); err != nil {
		return core.Goal{}, fmt.Errorf("update goal total: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return core.Goal{}, fmt.Errorf("commit contribution: %w", err)
	}

	goal.CurrentAmount = core.Money{Cents: totalCents}
	goal.Status = status
	return goal, nil
}

func (s *SQLiteStore) FetchContributions(ctx context.Context, goalID int64, limit int) ([]core.GoalContribution, error) {
	query := `
		SELECT id, goal_id, amount_cents, contribution_date, notes
		FROM goal_contributions WHERE goal_id = ?
		ORDER BY contribution_date DESC, id DESC`
	args := []any{goalID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch contributions: %w", err)
	}
	defer rows.Close()

	var out []core.GoalContribution
	for rows.Next() {
		var (
			c     core.GoalContribution
			cents int64
			date  string
		)
		if err := rows.Scan(&c.ID, &c.GoalID, &cents, &date, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		c.Amount = core.Money{Cents: cents}
		c.Date = d
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FiredMilestones(ctx context.Context, goalID int64) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT threshold_pct FROM goal_milestones WHERE goal_id = ?", goalID)
	if err != nil {
		return nil, fmt.Errorf("fetch milestones: %w", err)
	}
	defer rows.Close()

	fired := make(map[int]bool)
	for rows.Next() {
		var threshold int
		if err := rows.Scan(&threshold); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		fired[threshold] = true
	}
	return fired, rows.Err()
}

func (s *SQLiteStore) RecordMilestones(ctx context.Context, goalID int64, thresholds []int) error {
	for _, threshold := range thresholds {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO goal_milestones (goal_id, threshold_pct) VALUES (?, ?)
			ON CONFLICT (goal_id, threshold_pct) DO NOTHING`,
			goalID, threshold); err != nil {
			return fmt.Errorf("record milestone %d: %w", threshold, err)
		}
	}
	return nil
}

func (s *SQLiteStore) InsertPrediction(ctx context.Context, p core.Prediction) error {
	cents := int64(math.Round(p.Value * 100))
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (id, user_id, prediction_type, predicted_value_cents, prediction_date, confidence_score)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, string(p.Type), cents, p.TargetDate.String(), p.Confidence); err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FetchPrediction(ctx context.Context, id string) (core.Prediction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, prediction_type, predicted_value_cents, prediction_date, confidence_score
		FROM predictions WHERE id = ?`, id)

	var p core.Prediction
	var pType, date string
	var cents int64
	err := row.Scan(&p.ID, &p.UserID, &pType, &cents, &date, &p.Confidence)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Prediction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Prediction{}, fmt.Errorf("fetch prediction %s: %w", id, err)
	}
	d, err := parseDate(date)
	if err != nil {
		return core.Prediction{}, err
	}
	p.Type = core.PredictionType(pType)
	p.Value = float64(cents) / 100
	p.TargetDate = d
	return p, nil
}

func (s *SQLiteStore) InsertQARecord(ctx context.Context, rec core.QARecord) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO qa_history (user_id, question, answer) VALUES (?, ?, ?)",
		rec.UserID, rec.Question, rec.Answer); err != nil {
		return fmt.Errorf("insert qa record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListQAHistory(ctx context.Context, userID int64, limit int) ([]core.QARecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, question, answer, created_at
		FROM qa_history WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list qa history: %w", err)
	}
	defer rows.Close()

	var out []core.QARecord
	for rows.Next() {
		var (
			rec     core.QARecord
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Question, &rec.Answer, &created); err != nil {
			return nil, fmt.Errorf("scan qa record: %w", err)
		}
		if t, err := time.Parse("2006-01-02 15:04:05", created); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PendingTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, transaction_type, amount_cents, category, merchant
		FROM transactions WHERE export_state = 'pending'
		ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PendingPredictions(ctx context.Context, limit int) ([]core.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM predictions WHERE export_state = 'pending'
		ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending predictions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending prediction id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]core.Prediction, 0, len(ids))
	for _, id := range ids {
		p, err := s.FetchPrediction(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *SQLiteStore) MarkTransactionExport(ctx context.Context, id int64, state core.ExportState) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET export_state = ? WHERE id = ?", string(state), id); err != nil {
		return fmt.Errorf("mark transaction export %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) MarkPredictionExport(ctx context.Context, id string, state core.ExportState) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE predictions SET export_state = ? WHERE id = ?", string(state), id); err != nil {
		return fmt.Errorf("mark prediction export %s: %w", id, err)
	}
	return nil
}
