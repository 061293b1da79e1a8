package strategy

import (
	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	portfoliov1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/portfolio/v1"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidMultiplier is returned when the CPPI multiplier is not positive.
	ErrInvalidMultiplier = errors.NewErrorDetails("multiplier must be greater than zero", errors.InvalidStrategyParameter, "multiplier")
	// ErrInvalidFloor is returned when the CPPI floor is negative.
	ErrInvalidFloor = errors.NewErrorDetails("floor must not be negative", errors.InvalidStrategyParameter, "floor")
	// ErrInvalidRiskyPrice is returned when a snapshot carries no usable risky price.
	ErrInvalidRiskyPrice = errors.NewErrorDetails("risky price must be greater than zero", errors.InvalidPrice, "risky_price")
)

// CPPI is a constant proportion portfolio insurance strategy.
// It keeps multiplier times the cushion above floor invested in the risky asset,
// buying as the price goes up and selling back to the safe asset as it goes down.
type CPPI struct {
	risky      portfoliov1.Asset
	safe       portfoliov1.Asset
	multiplier decimal.Decimal
	floor      decimal.Decimal
}

// NewCPPI creates a new CPPI strategy. floor is expressed in safe units.
func NewCPPI(risky, safe portfoliov1.Asset, multiplier, floor decimal.Decimal) (*CPPI, error) {
	be := errors.NewBaseError()
	if !multiplier.IsPositive() {
		be.AddErrorDetails(ErrInvalidMultiplier.WithOperands(multiplier.String()))
	}
	if floor.IsNegative() {
		be.AddErrorDetails(ErrInvalidFloor.WithOperands(floor.String()))
	}
	if err := be.OrNil(); err != nil {
		return nil, err
	}

	return &CPPI{risky: risky, safe: safe, multiplier: multiplier, floor: floor}, nil
}

// Name returns the strategy name.
func (c *CPPI) Name() string {
	return "cppi"
}

// CheckNewOrder returns the order moving the risky exposure to its target.
func (c *CPPI) CheckNewOrder(s portfoliov1.Snapshot) (*portfoliov1.MarketOrder, error) {
	if !s.RiskyPrice.IsPositive() {
		return nil, ErrInvalidRiskyPrice.WithOperands(s.RiskyPrice.String())
	}

	riskyValue := s.RiskyQuantity.Mul(s.RiskyPrice)
	value := riskyValue.Add(s.SafeQuantity)
	cushion := value.Sub(c.floor)

	if !cushion.IsPositive() {
		if s.RiskyQuantity.IsZero() {
			return nil, nil
		}
		return c.order(c.risky, c.safe, s.RiskyQuantity)
	}

	target := decimal.Min(cushion.Mul(c.multiplier), value)
	delta := target.Sub(riskyValue)

	switch delta.Sign() {
	case 1:
		return c.order(c.safe, c.risky, delta)
	case -1:
		return c.order(c.risky, c.safe, delta.Abs().Div(s.RiskyPrice))
	default:
		return nil, nil
	}
}

func (c *CPPI) order(sell, buy portfoliov1.Asset, quantity decimal.Decimal) (*portfoliov1.MarketOrder, error) {
	order, err := portfoliov1.NewMarketOrder(sell, buy, quantity)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
