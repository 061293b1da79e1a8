package v1

import (
	"context"
)

//go:generate mockgen -source=repository.go -destination=mock/repository_mock.go -package=mock

// HlocRepository persists aggregated bars of a run.
type HlocRepository interface {
	StoreBatch(ctx context.Context, runID, symbol, interval string, bars []Hloc) error
	GetByRun(ctx context.Context, runID, interval string) ([]Hloc, error)
}

// HlocPublisher fans aggregated bars out to subscribers.
type HlocPublisher interface {
	Publish(ctx context.Context, runID, symbol, interval string, bars []Hloc) error
}
