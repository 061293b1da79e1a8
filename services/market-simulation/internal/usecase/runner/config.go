package runner

import (
	"math/rand/v2"
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	marketstatev1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/marketstate/v1"
)

var (
	// ErrInvalidPriceIncrement is returned when the price step is zero.
	ErrInvalidPriceIncrement = errors.NewErrorDetails("price increment must be greater than zero", errors.InvalidPriceIncrement, "price_increment")
	// ErrInvalidTradeIntervalRange is returned for a bad inter-trade gap range.
	ErrInvalidTradeIntervalRange = errors.NewErrorDetails("trade interval range must be positive and ascending", errors.InvalidTradeIntervalRange, "trade_interval_ms")
	// ErrInvalidRegimeDurationRange is returned for a bad market-state window range.
	ErrInvalidRegimeDurationRange = errors.NewErrorDetails("market state duration range must be positive and ascending", errors.InvalidRegimeDurationRange, "regime_duration_ms")
	// ErrInvalidVolumeBaseRange is returned for a bad base volume range.
	ErrInvalidVolumeBaseRange = errors.NewErrorDetails("volume base range must be positive and ascending", errors.InvalidVolumeBaseRange, "volume_base")
	// ErrInvalidLiquidityChangeRange is returned for a bad limit change range.
	ErrInvalidLiquidityChangeRange = errors.NewErrorDetails("liquidity change range must be positive and ascending", errors.InvalidLiquidityChangeRange, "liquidity_change_by_tick")
	// ErrInvalidLiquidityAmplifier is returned when the amplifier is zero.
	ErrInvalidLiquidityAmplifier = errors.NewErrorDetails("liquidity amplifier must be greater than zero", errors.InvalidLiquidityAmplifier, "liquidity_amplifier")
	// ErrInvalidMovingAverageWindow is returned when the indicator window is not positive.
	ErrInvalidMovingAverageWindow = errors.NewErrorDetails("moving average window must be greater than zero", errors.InvalidMovingAverageWindow, "moving_average_window")
)

// Range is an inclusive [Min, Max] interval of fixed-point values or milliseconds.
type Range struct {
	Min uint64
	Max uint64
}

// valid requires 0 < Min < Max.
func (r Range) valid() bool {
	return r.Min > 0 && r.Min < r.Max
}

// draw returns a uniform value in [Min, Max].
func (r Range) draw(rng *rand.Rand) uint64 {
	return r.Min + rng.Uint64N(r.Max-r.Min+1)
}

// Config holds every knob of a simulation run.
type Config struct {
	// PriceIncrement is the fixed-point price step between two levels.
	PriceIncrement uint64
	// TradeIntervalMs bounds the gap between two trades.
	TradeIntervalMs Range
	// RegimeDurationMs bounds the length of a market-state window.
	RegimeDurationMs Range
	// VolumeBase bounds market volume and limit volume per level.
	VolumeBase Range
	// LiquidityChangeByTick bounds the limit volume added at each new level.
	LiquidityChangeByTick Range
	// LiquidityAmplifier scales the dominant side, in millionths (1_000_000 is neutral).
	LiquidityAmplifier uint64
	// MovingAverageWindow is the indicator window W, in ticks.
	MovingAverageWindow int
	// InitialState is the regime of the first window.
	InitialState marketstatev1.State
}

const day = uint64(24 * time.Hour / time.Millisecond)

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		PriceIncrement:        100_000,
		TradeIntervalMs:       Range{Min: 15, Max: 30_000},
		RegimeDurationMs:      Range{Min: 14 * day, Max: 90 * day},
		VolumeBase:            Range{Min: 1_000_000, Max: 100_000_000},
		LiquidityChangeByTick: Range{Min: 1_000_000, Max: 100_000_000},
		LiquidityAmplifier:    1_005_000,
		MovingAverageWindow:   20,
		InitialState:          marketstatev1.MBEqualLSMSEqualLB,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	be := errors.NewBaseError()

	if c.PriceIncrement == 0 {
		be.AddErrorDetails(ErrInvalidPriceIncrement.WithOperands(c.PriceIncrement))
	}
	if !c.TradeIntervalMs.valid() {
		be.AddErrorDetails(ErrInvalidTradeIntervalRange.WithOperands(c.TradeIntervalMs.Min, c.TradeIntervalMs.Max))
	}
	if !c.RegimeDurationMs.valid() {
		be.AddErrorDetails(ErrInvalidRegimeDurationRange.WithOperands(c.RegimeDurationMs.Min, c.RegimeDurationMs.Max))
	}
	if !c.VolumeBase.valid() {
		be.AddErrorDetails(ErrInvalidVolumeBaseRange.WithOperands(c.VolumeBase.Min, c.VolumeBase.Max))
	}
	if !c.LiquidityChangeByTick.valid() {
		be.AddErrorDetails(ErrInvalidLiquidityChangeRange.WithOperands(c.LiquidityChangeByTick.Min, c.LiquidityChangeByTick.Max))
	}
	if c.LiquidityAmplifier == 0 {
		be.AddErrorDetails(ErrInvalidLiquidityAmplifier.WithOperands(c.LiquidityAmplifier))
	}
	if c.MovingAverageWindow <= 0 {
		be.AddErrorDetails(ErrInvalidMovingAverageWindow.WithOperands(c.MovingAverageWindow))
	}
	if !c.InitialState.Valid() {
		be.AddErrorDetails(marketstatev1.ErrUnknownState.WithOperands(c.InitialState.String()))
	}

	return be.OrNil()
}
