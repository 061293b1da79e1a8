package v1

import (
	"github.com/shopspring/decimal"
)

// Snapshot is what a strategy sees when it is asked for a new order.
type Snapshot struct {
	TimeMs        uint64
	RiskyQuantity decimal.Decimal
	SafeQuantity  decimal.Decimal
	// RiskyPrice is the price of one risky unit in safe units.
	RiskyPrice decimal.Decimal
}

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// Strategy decides whether the portfolio should trade at a given snapshot.
// A nil order means nothing to do.
type Strategy interface {
	Name() string
	CheckNewOrder(snapshot Snapshot) (*MarketOrder, error)
}
