package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
)

// MemoryStore is an in-memory Store used by tests. It mirrors the
// SQLite implementation's ordering and transition semantics.
type MemoryStore struct {
	mu sync.Mutex

	nextTxID      int64
	nextGoalID    int64
	nextContribID int64
	nextQAID      int64

	transactions  []core.Transaction
	txExportState map[int64]core.ExportState
	goals         map[int64]core.Goal
	contributions map[int64][]core.GoalContribution
	milestones    map[int64]map[int]bool
	predictions   map[string]core.Prediction
	predExport    map[string]core.ExportState
	predOrder     []string
	qaHistory     []core.QARecord
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextTxID:      1,
		nextGoalID:    1,
		nextContribID: 1,
		nextQAID:      1,
		txExportState: make(map[int64]core.ExportState),
		goals:         make(map[int64]core.Goal),
		contributions: make(map[int64][]core.GoalContribution),
		milestones:    make(map[int64]map[int]bool),
		predictions:   make(map[string]core.Prediction),
		predExport:    make(map[string]core.ExportState),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) InsertTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx.ID = m.nextTxID
	m.nextTxID++
	m.transactions = append(m.transactions, tx)
	m.txExportState[tx.ID] = core.ExportPending
	return tx, nil
}

func (m *MemoryStore) FetchTransaction(_ context.Context, id, userID int64) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.transactions {
		if tx.ID == id && tx.UserID == userID {
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (m *MemoryStore) FetchTransactions(_ context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []core.Transaction
	for _, tx := range m.transactions {
		if tx.UserID != userID {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if len(f.Categories) > 0 && !contains(f.Categories, tx.Category) {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			if f.Descending {
				return out[i].Date.After(out[j].Date.Time)
			}
			return out[i].Date.Before(out[j].Date.Time)
		}
		if f.Descending {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (m *MemoryStore) ClearUserData(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []core.Transaction
	var removed int64
	for _, tx := range m.transactions {
		if tx.UserID == userID {
			removed++
			delete(m.txExportState, tx.ID)
			continue
		}
		kept = append(kept, tx)
	}
	m.transactions = kept
	return removed, nil
}

func (m *MemoryStore) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.ID = m.nextGoalID
	m.nextGoalID++
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	m.goals[g.ID] = g
	return g, nil
}

func (m *MemoryStore) FetchGoal(_ context.Context, goalID, userID int64) (core.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[goalID]
	if !ok || g.UserID != userID {
		return core.Goal{}, core.ErrGoalNotFound
	}
	return g, nil
}

func (m *MemoryStore) ListGoals(_ context.Context, userID int64, status core.GoalStatus) ([]core.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Goal
	for _, g := range m.goals {
		if g.UserID != userID {
			continue
		}
		if status != "" && g.Status != status {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TargetDate.Equal(out[j].TargetDate.Time) {
			return out[i].TargetDate.Before(out[j].TargetDate.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) UpdateGoal(_ context.Context, g core.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.goals[g.ID]
	if !ok || existing.UserID != g.UserID {
		return core.ErrGoalNotFound
	}
	existing.Name = g.Name
	existing.Type = g.Type
	existing.TargetAmount = g.TargetAmount
	existing.TargetDate = g.TargetDate
	existing.Category = g.Category
	existing.Description = g.Description
	existing.Priority = g.Priority
	m.goals[g.ID] = existing
	return nil
}

func (m *MemoryStore) DeleteGoal(_ context.Context, goalID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[goalID]
	if !ok || g.UserID != userID {
		return core.ErrGoalNotFound
	}
	delete(m.goals, goalID)
	delete(m.contributions, goalID)
	delete(m.milestones, goalID)
	return nil
}

func (m *MemoryStore) AddContribution(_ context.Context, userID int64, c core.GoalContribution) (core.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	goal, ok := m.goals[c.GoalID]
	if !ok || goal.UserID != userID {
		return core.Goal{}, core.ErrGoalNotFound
	}
	if goal.Status == core.GoalCompleted {
		return core.Goal{}, core.ErrGoalCompleted
	}

	c.ID = m.nextContribID
	m.nextContribID++
	m.contributions[c.GoalID] = append(m.contributions[c.GoalID], c)

	var total int64
	for _, contrib := range m.contributions[c.GoalID] {
		total += contrib.Amount.Cents
	}
	goal.CurrentAmount = core.Money{Cents: total}
	if total >= goal.TargetAmount.Cents {
		goal.Status = core.GoalCompleted
	}
	m.goals[c.GoalID] = goal
	return goal, nil
}

func (m *MemoryStore) FetchContributions(_ context.Context, goalID int64, limit int) ([]core.GoalContribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]core.GoalContribution(nil), m.contributions[goalID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) FiredMilestones(_ context.Context, goalID int64) (map[int]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fired := make(map[int]bool, len(m.milestones[goalID]))
	for k, v := range m.milestones[goalID] {
		fired[k] = v
	}
	return fired, nil
}

func (m *MemoryStore) RecordMilestones(_ context.Context, goalID int64, thresholds []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.milestones[goalID] == nil {
		m.milestones[goalID] = make(map[int]bool)
	}
	for _, t := range thresholds {
		m.milestones[goalID][t] = true
	}
	return nil
}

func (m *MemoryStore) InsertPrediction(_ context.Context, p core.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[p.ID] = p
	m.predExport[p.ID] = core.ExportPending
	m.predOrder = append(m.predOrder, p.ID)
	return nil
}

func (m *MemoryStore) FetchPrediction(_ context.Context, id string) (core.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.predictions[id]
	if !ok {
		return core.Prediction{}, core.ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) InsertQARecord(_ context.Context, rec core.QARecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = m.nextQAID
	m.nextQAID++
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.qaHistory = append(m.qaHistory, rec)
	return nil
}

func (m *MemoryStore) ListQAHistory(_ context.Context, userID int64, limit int) ([]core.QARecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.QARecord
	for i := len(m.qaHistory) - 1; i >= 0; i-- {
		if m.qaHistory[i].UserID != userID {
			continue
		}
		out = append(out, m.qaHistory[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) PendingTransactions(_ context.Context, limit int) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Transaction
	for _, tx := range m.transactions {
		if m.txExportState[tx.ID] != core.ExportPending {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) PendingPredictions(_ context.Context, limit int) ([]core.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Prediction
	for _, id := range m.predOrder {
		if m.predExport[id] != core.ExportPending {
			continue
		}
		out = append(out, m.predictions[id])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) MarkTransactionExport(_ context.Context, id int64, state core.ExportState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txExportState[id]; ok {
		m.txExportState[id] = state
	}
	return nil
}

func (m *MemoryStore) MarkPredictionExport(_ context.Context, id string, state core.ExportState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.predExport[id]; ok {
		m.predExport[id] = state
	}
	return nil
}
