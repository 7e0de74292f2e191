// Package memory is an in-process export backend used in tests and
// when no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/export"
)

type Appender struct {
	mu   sync.Mutex
	rows []export.Row
	err  error
}

var _ export.RowAppender = (*Appender)(nil)

func New() *Appender {
	return &Appender{}
}

func (a *Appender) Append(_ context.Context, row export.Row) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.rows = append(a.rows, row)
	return nil
}

// Rows returns a copy of everything appended so far.
func (a *Appender) Rows() []export.Row {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]export.Row(nil), a.rows...)
}

// FailWith makes subsequent appends return err. Pass nil to recover.
func (a *Appender) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}
