package backtest

import (
	"context"
	"testing"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	hlocv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/hloc/v1"
	portfoliov1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/portfolio/v1"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/portfolio/v1/mock"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/usecase/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	eth  = portfoliov1.NewAsset("ETH", "Ether", 18)
	lusd = portfoliov1.NewAsset("LUSD", "Liquity USD", 18)

	config = Config{
		Risky:        eth,
		Safe:         lusd,
		InitialRisky: decimal.Zero,
		InitialSafe:  decimal.NewFromInt(100),
	}
)

func bars(closes ...uint64) []hlocv1.Hloc {
	out := make([]hlocv1.Hloc, 0, len(closes))
	for i, c := range closes {
		out = append(out, hlocv1.Hloc{Time: uint64(i) * 60_000, Open: c, High: c, Low: c, Close: c, Volume: 1, Ticks: 1})
	}
	return out
}

func TestUsecase_RunCPPI(t *testing.T) {
	cppi, err := strategy.NewCPPI(eth, lusd, decimal.NewFromInt(3), decimal.NewFromInt(80))
	require.NoError(t, err)

	u := NewUsecase(logger.NewNop())
	result, err := u.Run(context.Background(), cppi, bars(10_000_000, 10_000_000, 9_000_000), config)
	require.NoError(t, err)

	assert.Equal(t, "cppi", result.Strategy)
	assert.Equal(t, 2, result.Orders)
	require.Len(t, result.Portfolio.Positions, 2)
	assert.Equal(t, eth, result.Portfolio.Positions[0].Asset)
	assert.True(t, result.Portfolio.Positions[0].Quantity.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, lusd, result.Portfolio.Positions[1].Asset)
	assert.Equal(t, uint64(120_000), result.Portfolio.Positions[1].OpenTimeMs)
	assert.True(t, result.LastPrice.Equal(decimal.NewFromInt(9)))
	assert.True(t, result.FinalValue.Equal(decimal.NewFromInt(94)), "got %s", result.FinalValue)
}

func TestUsecase_Run(t *testing.T) {
	order := &portfoliov1.MarketOrder{Sell: lusd, Buy: eth, QuantitySell: decimal.NewFromInt(50)}
	tooLarge := &portfoliov1.MarketOrder{Sell: lusd, Buy: eth, QuantitySell: decimal.NewFromInt(500)}

	testCases := []struct {
		name     string
		ctx      func() context.Context
		mockFn   func(t *testing.T, m *mock.MockStrategy)
		assertFn func(t *testing.T, result Result, err error)
	}{
		{
			name: "fills at the bar close",
			ctx:  context.Background,
			mockFn: func(t *testing.T, m *mock.MockStrategy) {
				m.EXPECT().Name().Return("stub")
				m.EXPECT().CheckNewOrder(gomock.Any()).DoAndReturn(func(s portfoliov1.Snapshot) (*portfoliov1.MarketOrder, error) {
					assert.Equal(t, uint64(0), s.TimeMs)
					assert.True(t, s.RiskyQuantity.IsZero())
					assert.True(t, s.SafeQuantity.Equal(decimal.NewFromInt(100)))
					assert.True(t, s.RiskyPrice.Equal(decimal.NewFromInt(20)))
					return order, nil
				})
			},
			assertFn: func(t *testing.T, result Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, 1, result.Orders)
				assert.True(t, result.Portfolio.Balance(eth).Equal(decimal.RequireFromString("2.5")))
				assert.True(t, result.Portfolio.Balance(lusd).Equal(decimal.NewFromInt(50)))
				assert.True(t, result.FinalValue.Equal(decimal.NewFromInt(100)))
			},
		},
		{
			name: "strategy error",
			ctx:  context.Background,
			mockFn: func(t *testing.T, m *mock.MockStrategy) {
				m.EXPECT().Name().Return("stub")
				m.EXPECT().CheckNewOrder(gomock.Any()).Return(nil, strategy.ErrInvalidRiskyPrice)
			},
			assertFn: func(t *testing.T, _ Result, err error) {
				assert.ErrorIs(t, err, strategy.ErrInvalidRiskyPrice)
				var tracer *errors.ErrorTracer
				assert.ErrorAs(t, err, &tracer)
			},
		},
		{
			name: "order above balance",
			ctx:  context.Background,
			mockFn: func(t *testing.T, m *mock.MockStrategy) {
				m.EXPECT().Name().Return("stub")
				m.EXPECT().CheckNewOrder(gomock.Any()).Return(tooLarge, nil)
			},
			assertFn: func(t *testing.T, _ Result, err error) {
				assert.ErrorIs(t, err, portfoliov1.ErrInsufficientBalance)
			},
		},
		{
			name: "cancelled",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			mockFn: func(t *testing.T, m *mock.MockStrategy) {
				m.EXPECT().Name().Return("stub")
			},
			assertFn: func(t *testing.T, _ Result, err error) {
				assert.ErrorIs(t, err, context.Canceled)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := mock.NewMockStrategy(ctrl)
			tc.mockFn(t, m)

			u := NewUsecase(logger.NewNop())
			result, err := u.Run(tc.ctx(), m, bars(20_000_000), config)
			tc.assertFn(t, result, err)
		})
	}
}
