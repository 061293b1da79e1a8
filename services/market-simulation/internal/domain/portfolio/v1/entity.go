package v1

import (
	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidOrderQuantity is returned when an order sells nothing or buys nothing.
	ErrInvalidOrderQuantity = errors.NewErrorDetails("order quantity must be greater than zero", errors.InvalidOrderQuantity, "quantity")
	// ErrInsufficientBalance is returned when the sold asset balance is below the order quantity.
	ErrInsufficientBalance = errors.NewErrorDetails("not enough balance to sell", errors.InsufficientBalance, "balance")
)

// Asset identifies a tradable asset.
type Asset struct {
	Symbol   string
	Name     string
	Decimals int32
}

// NewAsset creates a new Asset.
func NewAsset(symbol, name string, decimals int32) Asset {
	return Asset{Symbol: symbol, Name: name, Decimals: decimals}
}

// MarketOrder sells QuantitySell of Sell for the best available amount of Buy.
type MarketOrder struct {
	Sell         Asset
	Buy          Asset
	QuantitySell decimal.Decimal
}

// NewMarketOrder validates and creates a MarketOrder.
func NewMarketOrder(sell, buy Asset, quantitySell decimal.Decimal) (MarketOrder, error) {
	if !quantitySell.IsPositive() {
		return MarketOrder{}, ErrInvalidOrderQuantity.WithOperands(quantitySell.String())
	}
	return MarketOrder{Sell: sell, Buy: buy, QuantitySell: quantitySell}, nil
}

// Position is a filled order: the quantity of Asset received at OpenTimeMs.
type Position struct {
	OpenTimeMs  uint64
	CloseTimeMs *uint64
	Asset       Asset
	Quantity    decimal.Decimal
}

// Portfolio holds balances by asset symbol and the positions opened so far.
type Portfolio struct {
	Balances  map[string]decimal.Decimal
	Positions []Position
}

// NewPortfolio creates a Portfolio with a copy of balances.
func NewPortfolio(balances map[string]decimal.Decimal) *Portfolio {
	p := &Portfolio{Balances: make(map[string]decimal.Decimal, len(balances))}
	for symbol, qty := range balances {
		p.Balances[symbol] = qty
	}
	return p
}

// Balance returns the balance of asset, zero when unknown.
func (p *Portfolio) Balance(asset Asset) decimal.Decimal {
	return p.Balances[asset.Symbol]
}

// Apply fills order for quantityBuy at timeMs.
// The portfolio is left untouched when the order is rejected.
func (p *Portfolio) Apply(order MarketOrder, quantityBuy decimal.Decimal, timeMs uint64) error {
	sell := p.Balance(order.Sell)
	if sell.LessThan(order.QuantitySell) {
		return ErrInsufficientBalance.WithOperands(sell.String(), order.QuantitySell.String())
	}
	if !quantityBuy.IsPositive() {
		return ErrInvalidOrderQuantity.WithOperands(quantityBuy.String())
	}

	p.Balances[order.Sell.Symbol] = sell.Sub(order.QuantitySell)
	p.Balances[order.Buy.Symbol] = p.Balance(order.Buy).Add(quantityBuy)
	p.Positions = append(p.Positions, Position{
		OpenTimeMs: timeMs,
		Asset:      order.Buy,
		Quantity:   quantityBuy,
	})

	return nil
}
