package questdb

import (
	"context"

	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// RowsInterface is the subset of pgx.Rows the repositories read.
type RowsInterface interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

// RowsWrapper adapts pgx.Rows to RowsInterface.
type RowsWrapper struct {
	rows pgx.Rows
}

// NewRowsWrapper creates a new RowsWrapper.
func NewRowsWrapper(rows pgx.Rows) RowsInterface {
	return &RowsWrapper{rows: rows}
}

// Next returns true if there are more rows to read.
func (r *RowsWrapper) Next() bool {
	return r.rows.Next()
}

// Scan scans the current row into dest.
func (r *RowsWrapper) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

// Close closes the rows.
func (r *RowsWrapper) Close() {
	r.rows.Close()
}

// Err returns the error met while iterating.
func (r *RowsWrapper) Err() error {
	return r.rows.Err()
}

// Client defines the QuestDB operations used by the simulation store.
// Every call joins the transaction carried by ctx, if any.
type Client interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (RowsInterface, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	Begin(ctx context.Context) (pgx.Tx, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)

	Ping(ctx context.Context) error
	Close()
}
