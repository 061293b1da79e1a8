package questdb

import (
	"context"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/jackc/pgx/v5"
)

type contextKey string

const txKey contextKey = "questdb_transaction"

// ErrNoTransaction is returned by Commit and Rollback when ctx carries no transaction.
var ErrNoTransaction = errors.NewErrorDetails("no transaction found in context", errors.GeneralRepositoryError, "tx")

// Begin starts a transaction and returns a context carrying it.
func Begin(ctx context.Context, client Client) (context.Context, error) {
	tx, err := client.Begin(ctx)
	if err != nil {
		return nil, errors.NewTracer("failed to begin transaction").Wrap(err)
	}

	return context.WithValue(ctx, txKey, tx), nil
}

// Commit commits the transaction carried by ctx.
func Commit(ctx context.Context) error {
	tx, ok := GetTx(ctx)
	if !ok {
		return ErrNoTransaction
	}
	return tx.Commit(ctx)
}

// Rollback rolls back the transaction carried by ctx.
func Rollback(ctx context.Context) error {
	tx, ok := GetTx(ctx)
	if !ok {
		return ErrNoTransaction
	}
	return tx.Rollback(ctx)
}

// GetTx extracts the transaction from ctx.
func GetTx(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}

// WithTx runs fn inside a transaction, committing on success and rolling back otherwise.
func WithTx(ctx context.Context, client Client, fn func(ctx context.Context) error) error {
	txCtx, err := Begin(ctx, client)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		_ = Rollback(txCtx)
		return err
	}

	return Commit(txCtx)
}
