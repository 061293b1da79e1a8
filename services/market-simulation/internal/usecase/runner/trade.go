package runner

import (
	"math/bits"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/fixedpoint"
	actorv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/actor/v1"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
)

var (
	// ErrMarketVolumeOverflow is returned when amplifying the market volume overflows.
	ErrMarketVolumeOverflow = errors.NewErrorDetails("market volume amplifier overflow", errors.MarketVolumeAmplifierOverflow, "market_volume")
	// ErrLimitVolumeOverflow is returned when amplifying a limit volume overflows.
	ErrLimitVolumeOverflow = errors.NewErrorDetails("limit volume amplifier overflow", errors.LimitVolumeAmplifierOverflow, "limit_volume")
	// ErrPriceBelowIncrement is returned when the current price is not above the increment.
	ErrPriceBelowIncrement = errors.NewErrorDetails("current price must be greater than price increment", errors.PriceBelowIncrement, "price")
	// ErrLimitDepthOverflow is returned when the replenished limit depth does not fit 64 bits.
	ErrLimitDepthOverflow = errors.NewErrorDetails("limit depth overflow", errors.LimitDepthOverflow, "limit_volume_by_tick")
	// ErrPriceOverflow is returned when a buy walk steps the price past 64 bits.
	ErrPriceOverflow = errors.NewErrorDetails("price overflow", errors.PriceOverflow, "price")
)

// amplify scales v by amplifier millionths.
func amplify(v, amplifier uint64, overflow *errors.ErrorDetails) (uint64, error) {
	scaled, ok := fixedpoint.MulDivU64(v, amplifier, fixedpoint.Scale)
	if !ok {
		return 0, overflow.WithOperands(v, amplifier, fixedpoint.Scale)
	}
	return scaled, nil
}

// buildActors amplifies the side favoured by power and validates the result.
// Draws are taken by the caller in the order market, limit, change.
func buildActors(power actorv1.PowerState, amplifier, market, limit, change uint64) (actorv1.Actors, error) {
	var err error
	switch power {
	case actorv1.Less:
		if limit, err = amplify(limit, amplifier, ErrLimitVolumeOverflow); err != nil {
			return actorv1.Actors{}, err
		}
		if change, err = amplify(change, amplifier, ErrLimitVolumeOverflow); err != nil {
			return actorv1.Actors{}, err
		}
	case actorv1.Greater:
		if market, err = amplify(market, amplifier, ErrMarketVolumeOverflow); err != nil {
			return actorv1.Actors{}, err
		}
	}

	return actorv1.NewActors(market, limit, change)
}

// ResolveTrade walks a market order through the limit book starting at price.
// A level is fully consumed when the remaining market volume exceeds its depth;
// the price then steps by increment and the next level holds depth plus the change.
// The walk stops when the order is filled or the price would reach the increment.
func ResolveTrade(actors actorv1.Actors, timeMs, price, increment uint64, isBuy bool) ([]tickv1.Tick, error) {
	if price <= increment {
		return nil, ErrPriceBelowIncrement.WithOperands(price, increment)
	}

	ticks := make([]tickv1.Tick, 0, 1)
	remaining := actors.MarketVolume
	depth := actors.LimitVolumeByTick

	for remaining > 0 && price > increment {
		consumed := remaining > depth
		volume := min(remaining, depth)
		remaining -= volume

		t, err := tickv1.NewTick(price, timeMs, volume, isBuy, nil, nil)
		if err != nil {
			return nil, err
		}
		ticks = append(ticks, t)

		if !consumed {
			break
		}
		if isBuy {
			next, carry := bits.Add64(price, increment, 0)
			if carry != 0 {
				return nil, ErrPriceOverflow.WithOperands(price, increment)
			}
			price = next
		} else {
			price -= increment
		}
		next, carry := bits.Add64(depth, actors.LimitVolumeChangeByTick, 0)
		if carry != 0 {
			return nil, ErrLimitDepthOverflow.WithOperands(depth, actors.LimitVolumeChangeByTick)
		}
		depth = next
	}

	return ticks, nil
}
