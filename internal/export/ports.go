// Package export defines the row-append port the async worker writes
// ledger rows through, with a Google Sheets adapter and an in-memory
// one for tests.
package export

import "context"

// Row is one exported ledger row. Values are laid out in the backend's
// column order.
type Row struct {
	Kind   string // transaction or prediction
	Ref    string // source row identity, for logging
	Values []any
}

// RowAppender appends rows to the export backend.
type RowAppender interface {
	Append(ctx context.Context, row Row) error
}
