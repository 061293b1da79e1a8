package v1

import (
	"github.com/d-banana/safe-portfolio-management/pkg/errors"
)

var (
	// ErrInvalidMarketVolume is returned when the market volume is zero.
	ErrInvalidMarketVolume = errors.NewErrorDetails("market volume must be greater than zero", errors.InvalidMarketVolume, "market_volume")
	// ErrInvalidLimitVolumeByTick is returned when the limit volume per level is zero.
	ErrInvalidLimitVolumeByTick = errors.NewErrorDetails("limit volume by tick must be greater than zero", errors.InvalidLimitVolumeByTick, "limit_volume_by_tick")
	// ErrInvalidLimitVolumeChangeByTick is returned when the limit volume change per level is zero.
	ErrInvalidLimitVolumeChangeByTick = errors.NewErrorDetails("limit volume change by tick must be greater than zero", errors.InvalidLimitVolumeChangeByTick, "limit_volume_change_by_tick")
)

// Actors describes one trade: a market order walking a limit book.
type Actors struct {
	// MarketVolume is the total volume the market order wants to fill.
	MarketVolume uint64
	// LimitVolumeByTick is the resting volume at the current price level.
	LimitVolumeByTick uint64
	// LimitVolumeChangeByTick is added to the resting volume each time the price steps.
	LimitVolumeChangeByTick uint64
}

// DefaultActors matches a balanced book of 100 units at every level.
var DefaultActors = Actors{
	MarketVolume:            100_000_000,
	LimitVolumeByTick:       100_000_000,
	LimitVolumeChangeByTick: 10_000_000,
}

// NewActors validates and creates Actors.
func NewActors(marketVolume, limitVolumeByTick, limitVolumeChangeByTick uint64) (Actors, error) {
	if marketVolume == 0 {
		return Actors{}, ErrInvalidMarketVolume.WithOperands(marketVolume)
	}
	if limitVolumeByTick == 0 {
		return Actors{}, ErrInvalidLimitVolumeByTick.WithOperands(limitVolumeByTick)
	}
	if limitVolumeChangeByTick == 0 {
		return Actors{}, ErrInvalidLimitVolumeChangeByTick.WithOperands(limitVolumeChangeByTick)
	}

	return Actors{
		MarketVolume:            marketVolume,
		LimitVolumeByTick:       limitVolumeByTick,
		LimitVolumeChangeByTick: limitVolumeChangeByTick,
	}, nil
}

// PowerState compares market-side volume with the limit side it consumes.
type PowerState int

const (
	// Less means the market side is weaker than the limit side.
	Less PowerState = iota
	// Equal means both sides are balanced.
	Equal
	// Greater means the market side is stronger than the limit side.
	Greater
)

func (p PowerState) String() string {
	switch p {
	case Less:
		return "LESS"
	case Equal:
		return "EQUAL"
	case Greater:
		return "GREATER"
	default:
		return "UNKNOWN"
	}
}

// Power is the pair of power states for both sides of the book.
type Power struct {
	MarketBuyerVsLimitSeller PowerState
	MarketSellerVsLimitBuyer PowerState
}

// ForSide returns the power state governing a trade of the given direction.
func (p Power) ForSide(isBuy bool) PowerState {
	if isBuy {
		return p.MarketBuyerVsLimitSeller
	}
	return p.MarketSellerVsLimitBuyer
}
