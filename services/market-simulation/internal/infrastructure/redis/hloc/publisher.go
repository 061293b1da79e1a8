package hloc

import (
	"context"
	"encoding/json"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/fixedpoint"
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	"github.com/d-banana/safe-portfolio-management/pkg/redis"
	hlocv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/hloc/v1"
)

// Event is the JSON payload of one bar.
type Event struct {
	RunID    string `json:"run_id"`
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	TimeMs   uint64 `json:"time_ms"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
	Ticks    int    `json:"ticks"`
}

// NewEvent converts a bar of a run.
func NewEvent(runID, symbol, interval string, b hlocv1.Hloc) Event {
	return Event{
		RunID:    runID,
		Symbol:   symbol,
		Interval: interval,
		TimeMs:   b.Time,
		Open:     fixedpoint.ToDecimal(b.Open).String(),
		High:     fixedpoint.ToDecimal(b.High).String(),
		Low:      fixedpoint.ToDecimal(b.Low).String(),
		Close:    fixedpoint.ToDecimal(b.Close).String(),
		Volume:   fixedpoint.ToDecimal(b.Volume).String(),
		Ticks:    b.Ticks,
	}
}

// Publisher fans bars out on a Redis channel and keeps the latest one under a key.
type Publisher struct {
	client redis.Client
	logger logger.Interface
}

var _ hlocv1.HlocPublisher = (*Publisher)(nil)

// NewPublisher creates a bar publisher.
func NewPublisher(client redis.Client, log logger.Interface) *Publisher {
	return &Publisher{
		client: client,
		logger: log,
	}
}

// Channel returns the channel bars of a run and interval are published on.
func (p *Publisher) Channel(runID, interval string) string {
	return p.client.Key("bars", runID, interval)
}

// Publish sends every bar in order, then stores the last one with the default TTL.
func (p *Publisher) Publish(ctx context.Context, runID, symbol, interval string, bars []hlocv1.Hloc) error {
	if len(bars) == 0 {
		return nil
	}

	channel := p.Channel(runID, interval)
	var (
		payload   []byte
		delivered int64
	)
	for _, b := range bars {
		var err error
		payload, err = json.Marshal(NewEvent(runID, symbol, interval, b))
		if err != nil {
			return errors.NewTracer("failed to encode bar").Wrap(err)
		}

		n, err := p.client.Publish(ctx, channel, payload)
		if err != nil {
			return errors.NewTracer("failed to publish bar").Wrap(err)
		}
		delivered += n
	}

	if err := p.client.Set(ctx, p.client.Key("bars", runID, interval, "latest"), payload, 0); err != nil {
		return errors.NewTracer("failed to store latest bar").Wrap(err)
	}

	p.logger.DebugContext(ctx, "bars published",
		logger.NewField("channel", channel),
		logger.NewField("bars", len(bars)),
		logger.NewField("deliveries", delivered),
	)
	return nil
}
