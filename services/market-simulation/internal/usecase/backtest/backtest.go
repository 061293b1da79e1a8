package backtest

import (
	"context"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/fixedpoint"
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	hlocv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/hloc/v1"
	portfoliov1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/portfolio/v1"
	"github.com/shopspring/decimal"
)

// Config holds the pair traded by a backtest and the opening balances.
type Config struct {
	Risky        portfoliov1.Asset
	Safe         portfoliov1.Asset
	InitialRisky decimal.Decimal
	InitialSafe  decimal.Decimal
}

// Result summarizes a backtest.
type Result struct {
	Strategy  string
	Orders    int
	Portfolio *portfoliov1.Portfolio
	// LastPrice is the close of the last bar, FinalValue the portfolio value at that price in safe units.
	LastPrice  decimal.Decimal
	FinalValue decimal.Decimal
}

// Usecase replays bars through a strategy.
type Usecase struct {
	logger logger.Interface
}

// NewUsecase creates a new backtest usecase.
func NewUsecase(logger logger.Interface) *Usecase {
	return &Usecase{logger: logger}
}

// Run feeds the close of every bar to strategy and fills its orders at that close.
func (u *Usecase) Run(ctx context.Context, strategy portfoliov1.Strategy, bars []hlocv1.Hloc, config Config) (Result, error) {
	portfolio := portfoliov1.NewPortfolio(map[string]decimal.Decimal{
		config.Risky.Symbol: config.InitialRisky,
		config.Safe.Symbol:  config.InitialSafe,
	})
	result := Result{Strategy: strategy.Name(), Portfolio: portfolio}

	for _, bar := range bars {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		price := fixedpoint.ToDecimal(bar.Close)
		order, err := strategy.CheckNewOrder(portfoliov1.Snapshot{
			TimeMs:        bar.Time,
			RiskyQuantity: portfolio.Balance(config.Risky),
			SafeQuantity:  portfolio.Balance(config.Safe),
			RiskyPrice:    price,
		})
		if err != nil {
			return Result{}, errors.TracerFromError(err)
		}
		result.LastPrice = price
		if order == nil {
			continue
		}

		if err := portfolio.Apply(*order, fill(*order, config.Risky, price), bar.Time); err != nil {
			u.logger.ErrorContext(ctx, err,
				logger.NewField("strategy", result.Strategy),
				logger.NewField("time_ms", bar.Time),
			)
			return Result{}, errors.TracerFromError(err)
		}
		result.Orders++

		u.logger.DebugContext(ctx, "order filled",
			logger.NewField("strategy", result.Strategy),
			logger.NewField("sell", order.Sell.Symbol),
			logger.NewField("buy", order.Buy.Symbol),
			logger.NewField("quantity_sell", order.QuantitySell.String()),
			logger.NewField("price", price.String()),
		)
	}

	result.FinalValue = portfolio.Balance(config.Risky).Mul(result.LastPrice).Add(portfolio.Balance(config.Safe))

	u.logger.InfoContext(ctx, "backtest finished",
		logger.NewField("strategy", result.Strategy),
		logger.NewField("bars", len(bars)),
		logger.NewField("orders", result.Orders),
		logger.NewField("final_value", result.FinalValue.String()),
	)

	return result, nil
}

// fill returns the quantity bought by order when the risky asset trades at price.
func fill(order portfoliov1.MarketOrder, risky portfoliov1.Asset, price decimal.Decimal) decimal.Decimal {
	if order.Buy == risky {
		return order.QuantitySell.Div(price)
	}
	return order.QuantitySell.Mul(price)
}
