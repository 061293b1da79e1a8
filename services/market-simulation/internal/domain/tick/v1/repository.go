package v1

import (
	"context"
)

//go:generate mockgen -source=repository.go -destination=mock/repository_mock.go -package=mock

// TickRepository persists generated ticks of a run.
type TickRepository interface {
	StoreBatch(ctx context.Context, runID, symbol string, ticks []Tick) error
	GetByFilter(ctx context.Context, filter Filter) ([]Tick, error)
}

// TickPublisher streams generated ticks to downstream consumers.
type TickPublisher interface {
	Publish(ctx context.Context, runID, symbol string, ticks []Tick) error
	Close() error
}
