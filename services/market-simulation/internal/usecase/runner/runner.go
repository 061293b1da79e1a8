package runner

import (
	"context"
	"math/rand/v2"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	actorv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/actor/v1"
	marketstatev1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/marketstate/v1"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/usecase/indicator"
)

var (
	// ErrInvalidTimeRange is returned when the end time is not after the start time.
	ErrInvalidTimeRange = errors.NewErrorDetails("end time must be after start time", errors.InvalidTimeRange, "end_time_ms")
	// ErrMissingSelector is returned when the runner has no regime selector.
	ErrMissingSelector = errors.NewErrorDetails("regime selector is required", errors.MissingSelector, "selector")
	// ErrMissingRandomSource is returned when the runner has no random source.
	ErrMissingRandomSource = errors.NewErrorDetails("random source is required", errors.MissingRandomSource, "rng")
	// ErrMissingLogger is returned when the runner has no logger.
	ErrMissingLogger = errors.NewErrorDetails("logger is required", errors.MissingLogger, "logger")
)

// Observer is notified while a run progresses.
type Observer interface {
	OnWindow(ctx context.Context, state marketstatev1.State, startMs, durationMs uint64)
	OnTrade(ctx context.Context, isBuy bool, ticks []tickv1.Tick)
}

// Runner generates a tick series by chaining market-state windows of trades.
// A Runner owns its random source and is not safe for concurrent use.
type Runner struct {
	config    Config
	selector  marketstatev1.Selector
	rng       *rand.Rand
	engine    *indicator.Engine
	logger    logger.Interface
	observers []Observer
}

// NewRunner validates config and its collaborators and creates a Runner.
func NewRunner(config Config, selector marketstatev1.Selector, rng *rand.Rand, log logger.Interface, observers ...Observer) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch {
	case selector == nil:
		return nil, ErrMissingSelector
	case rng == nil:
		return nil, ErrMissingRandomSource
	case log == nil:
		return nil, ErrMissingLogger
	}

	engine, err := indicator.NewEngine(config.MovingAverageWindow)
	if err != nil {
		return nil, err
	}

	return &Runner{
		config:    config,
		selector:  selector,
		rng:       rng,
		engine:    engine,
		logger:    log,
		observers: observers,
	}, nil
}

// MakeActors draws the volumes of one trade and amplifies the side favoured by power.
func (r *Runner) MakeActors(power actorv1.Power, isBuy bool) (actorv1.Actors, error) {
	market := r.config.VolumeBase.draw(r.rng)
	limit := r.config.VolumeBase.draw(r.rng)
	change := r.config.LiquidityChangeByTick.draw(r.rng)

	return buildActors(power.ForSide(isBuy), r.config.LiquidityAmplifier, market, limit, change)
}

// Generate produces every tick in [startMs, endMs) starting from startPrice.
// Ticks are annotated with the moving average and variance as they are produced.
func (r *Runner) Generate(ctx context.Context, startMs, endMs, startPrice uint64) ([]tickv1.Tick, error) {
	if endMs <= startMs {
		return nil, ErrInvalidTimeRange.WithOperands(startMs, endMs)
	}
	if startPrice <= r.config.PriceIncrement {
		return nil, ErrPriceBelowIncrement.WithOperands(startPrice, r.config.PriceIncrement)
	}

	var (
		ticks   []tickv1.Tick
		price   = startPrice
		state   = r.config.InitialState
		now     = startMs
		windows int
	)

	for now < endMs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		duration := min(r.config.RegimeDurationMs.draw(r.rng), endMs-now)
		if windows > 0 {
			state = r.selector.Next(state, r.rng)
			if !state.Valid() {
				return nil, marketstatev1.ErrUnknownState.WithOperands(state.String())
			}
		}
		windows++

		for _, o := range r.observers {
			o.OnWindow(ctx, state, now, duration)
		}
		r.logger.DebugContext(ctx, "market state window",
			logger.NewField("state", state.String()),
			logger.NewField("start_ms", now),
			logger.NewField("duration_ms", duration),
		)

		windowTicks, last, err := r.runWindow(ctx, ticks, state, now, now+duration, price)
		if err != nil {
			r.logger.ErrorContext(ctx, err, logger.NewField("state", state.String()), logger.NewField("window_start_ms", now))
			return nil, err
		}

		ticks = append(ticks, windowTicks...)
		price = last
		now += duration
	}

	r.logger.InfoContext(ctx, "simulation generated",
		logger.NewField("ticks", len(ticks)),
		logger.NewField("windows", windows),
		logger.NewField("last_price", price),
	)

	return ticks, nil
}

// runWindow plays trades in [startMs, endMs) under one regime and returns the
// annotated ticks together with the last traded price.
func (r *Runner) runWindow(ctx context.Context, history []tickv1.Tick, state marketstatev1.State, startMs, endMs, price uint64) ([]tickv1.Tick, uint64, error) {
	var windowTicks []tickv1.Tick
	power := state.ActorPower()

	for t := startMs; t < endMs; {
		isBuy := r.rng.IntN(2) == 0

		actors, err := r.MakeActors(power, isBuy)
		if err != nil {
			return nil, 0, err
		}

		trade, err := ResolveTrade(actors, t, price, r.config.PriceIncrement, isBuy)
		if err != nil {
			return nil, 0, err
		}

		for _, tk := range trade {
			annotated, err := r.engine.Annotate(history, windowTicks, tk)
			if err != nil {
				return nil, 0, err
			}
			windowTicks = append(windowTicks, annotated)
		}
		price = trade[len(trade)-1].Price

		for _, o := range r.observers {
			o.OnTrade(ctx, isBuy, trade)
		}

		gap := r.config.TradeIntervalMs.draw(r.rng)
		if gap >= endMs-t {
			break
		}
		t += gap
	}

	return windowTicks, price, nil
}
