package strategy

import (
	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	portfoliov1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/portfolio/v1"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidDCAInterval is returned when the buying interval is zero.
	ErrInvalidDCAInterval = errors.NewErrorDetails("interval must be greater than zero", errors.InvalidStrategyParameter, "interval_ms")
	// ErrInvalidDCAQuantity is returned when the reserve spent per interval is not positive.
	ErrInvalidDCAQuantity = errors.NewErrorDetails("quantity per interval must be greater than zero", errors.InvalidStrategyParameter, "quantity")
	// ErrInvalidDCAPeriod is returned when the close time is not after the open time.
	ErrInvalidDCAPeriod = errors.NewErrorDetails("close time must be after open time", errors.InvalidStrategyParameter, "close_time_ms")
)

// DCA is a dollar cost averaging strategy.
// It spends a fixed quantity of the reserve asset on the buy asset once per
// interval between the open and close time, until the reserve runs out.
// A DCA keeps track of the last interval it bought in and is not safe for concurrent use.
type DCA struct {
	reserve    portfoliov1.Asset
	buy        portfoliov1.Asset
	intervalMs uint64
	quantity   decimal.Decimal
	openMs     uint64
	closeMs    *uint64

	bought   bool
	lastSlot uint64
}

// NewDCA creates a new DCA strategy. closeMs is optional.
func NewDCA(reserve, buy portfoliov1.Asset, intervalMs uint64, quantity decimal.Decimal, openMs uint64, closeMs *uint64) (*DCA, error) {
	be := errors.NewBaseError()
	if intervalMs == 0 {
		be.AddErrorDetails(ErrInvalidDCAInterval.WithOperands(intervalMs))
	}
	if !quantity.IsPositive() {
		be.AddErrorDetails(ErrInvalidDCAQuantity.WithOperands(quantity.String()))
	}
	if closeMs != nil && *closeMs <= openMs {
		be.AddErrorDetails(ErrInvalidDCAPeriod.WithOperands(openMs, *closeMs))
	}
	if err := be.OrNil(); err != nil {
		return nil, err
	}

	return &DCA{
		reserve:    reserve,
		buy:        buy,
		intervalMs: intervalMs,
		quantity:   quantity,
		openMs:     openMs,
		closeMs:    closeMs,
	}, nil
}

// Name returns the strategy name.
func (d *DCA) Name() string {
	return "dca"
}

// CheckNewOrder buys once in every interval slot reached by the snapshot time.
// The last purchase spends whatever reserve is left when it is below the quantity.
func (d *DCA) CheckNewOrder(s portfoliov1.Snapshot) (*portfoliov1.MarketOrder, error) {
	if s.TimeMs < d.openMs || (d.closeMs != nil && s.TimeMs >= *d.closeMs) {
		return nil, nil
	}

	slot := (s.TimeMs - d.openMs) / d.intervalMs
	if d.bought && slot <= d.lastSlot {
		return nil, nil
	}
	if !s.SafeQuantity.IsPositive() {
		return nil, nil
	}

	order, err := portfoliov1.NewMarketOrder(d.reserve, d.buy, decimal.Min(d.quantity, s.SafeQuantity))
	if err != nil {
		return nil, err
	}
	d.bought = true
	d.lastSlot = slot

	return &order, nil
}
