package v1

import (
	"github.com/d-banana/safe-portfolio-management/pkg/errors"
)

var (
	// ErrInvalidPrice is returned when a tick price is zero.
	ErrInvalidPrice = errors.NewErrorDetails("tick price must be greater than zero", errors.InvalidPrice, "price")
	// ErrInvalidVolume is returned when a tick volume is zero.
	ErrInvalidVolume = errors.NewErrorDetails("tick volume must be greater than zero", errors.InvalidVolume, "volume")
)

// Tick is one executed trade at a single price level.
// Price, Volume, MovingAverage and Variance are fixed-point values, Time is in milliseconds.
type Tick struct {
	Price  uint64
	Time   uint64
	Volume uint64
	IsUp   bool

	// MovingAverage and Variance are nil until the indicator engine annotates the tick.
	MovingAverage *uint64
	Variance      *uint64
	// Residual is set together with the indicators.
	Residual Residual
}

// Residual holds what integer division dropped from the indicators of a tick,
// for a window of L ticks. With it the exact window sums can be rebuilt from
// the tick alone.
type Residual struct {
	// MovingAverage is Σp mod L.
	MovingAverage uint64
	// Variance is (L·Σp² − (Σp)²) mod L².
	Variance uint64
}

// NewTick validates and creates a Tick.
func NewTick(price, timeMs, volume uint64, isUp bool, movingAverage, variance *uint64) (Tick, error) {
	if price == 0 {
		return Tick{}, ErrInvalidPrice.WithOperands(price)
	}
	if volume == 0 {
		return Tick{}, ErrInvalidVolume.WithOperands(volume)
	}

	return Tick{
		Price:         price,
		Time:          timeMs,
		Volume:        volume,
		IsUp:          isUp,
		MovingAverage: movingAverage,
		Variance:      variance,
	}, nil
}

// WithIndicators returns a copy of t annotated with the given indicator values.
func (t Tick) WithIndicators(movingAverage, variance uint64, residual Residual) Tick {
	t.MovingAverage = &movingAverage
	t.Variance = &variance
	t.Residual = residual
	return t
}

// Side returns "buy" for ticks produced by a buyer and "sell" otherwise.
func (t Tick) Side() string {
	if t.IsUp {
		return "buy"
	}
	return "sell"
}

// Filter represents the filter criteria for stored ticks.
type Filter struct {
	RunID  string
	Symbol string
	From   *uint64
	To     *uint64
	Limit  int
}
