package util

import (
	"context"

	"github.com/google/uuid"
)

type key string

const (
	runIDKey  = key("x-run-id")
	symbolKey = key("symbol")
)

// WithRunID returns a context carrying the simulation run id.
// A new uuid-v4 is generated when id is empty.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, runIDKey, id)
}

// GetRunID returns the run id from context, empty if not present.
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithSymbol returns a context carrying the simulated symbol.
func WithSymbol(ctx context.Context, symbol string) context.Context {
	return context.WithValue(ctx, symbolKey, symbol)
}

// GetSymbol returns the simulated symbol from context, empty if not present.
func GetSymbol(ctx context.Context) string {
	symbol, _ := ctx.Value(symbolKey).(string)
	return symbol
}
