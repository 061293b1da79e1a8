package strategy

import (
	"testing"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	portfoliov1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/portfolio/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	eth  = portfoliov1.NewAsset("ETH", "Ether", 18)
	lusd = portfoliov1.NewAsset("LUSD", "Liquity USD", 18)
)

func snapshot(risky, safe, price int64) portfoliov1.Snapshot {
	return portfoliov1.Snapshot{
		RiskyQuantity: decimal.NewFromInt(risky),
		SafeQuantity:  decimal.NewFromInt(safe),
		RiskyPrice:    decimal.NewFromInt(price),
	}
}

func TestCPPI_CheckNewOrder(t *testing.T) {
	cppi, err := NewCPPI(eth, lusd, decimal.NewFromInt(3), decimal.NewFromInt(80))
	require.NoError(t, err)

	testCases := []struct {
		name        string
		snapshot    portfoliov1.Snapshot
		expected    *portfoliov1.MarketOrder
		expectedErr error
	}{
		{
			name:     "no exposure",
			snapshot: snapshot(0, 100, 10),
			expected: &portfoliov1.MarketOrder{Sell: lusd, Buy: eth, QuantitySell: decimal.NewFromInt(60)},
		},
		{
			name:     "not enough exposure",
			snapshot: snapshot(3, 70, 10),
			expected: &portfoliov1.MarketOrder{Sell: lusd, Buy: eth, QuantitySell: decimal.NewFromInt(30)},
		},
		{
			name:     "exposure capped by value",
			snapshot: snapshot(6, 40, 20),
			expected: &portfoliov1.MarketOrder{Sell: lusd, Buy: eth, QuantitySell: decimal.NewFromInt(40)},
		},
		{
			name:     "reduce exposure",
			snapshot: snapshot(6, 40, 9),
			expected: &portfoliov1.MarketOrder{Sell: eth, Buy: lusd, QuantitySell: decimal.NewFromInt(12).Div(decimal.NewFromInt(9))},
		},
		{
			name:     "liquidation",
			snapshot: snapshot(6, 40, 1),
			expected: &portfoliov1.MarketOrder{Sell: eth, Buy: lusd, QuantitySell: decimal.NewFromInt(6)},
		},
		{
			name:     "full exposure",
			snapshot: snapshot(10, 0, 18),
		},
		{
			name:     "below floor without risky",
			snapshot: snapshot(0, 50, 10),
		},
		{
			name:        "zero price",
			snapshot:    snapshot(1, 100, 0),
			expectedErr: ErrInvalidRiskyPrice,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := cppi.CheckNewOrder(tc.snapshot)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			if tc.expected == nil {
				assert.Nil(t, order)
				return
			}
			require.NotNil(t, order)
			assert.Equal(t, tc.expected.Sell, order.Sell)
			assert.Equal(t, tc.expected.Buy, order.Buy)
			assert.True(t, tc.expected.QuantitySell.Equal(order.QuantitySell), "got %s", order.QuantitySell)
		})
	}
}

func TestNewCPPI_InvalidParameters(t *testing.T) {
	_, err := NewCPPI(eth, lusd, decimal.Zero, decimal.NewFromInt(-1))

	var be *errors.BaseError
	require.ErrorAs(t, err, &be)
	assert.True(t, be.IsAllCodeEqual(string(errors.InvalidStrategyParameter)))
	require.Len(t, be.GetDetails(), 2)
	assert.Equal(t, "multiplier", be.GetDetails()[0].Field)
	assert.Equal(t, "floor", be.GetDetails()[1].Field)
}

func TestNewCPPI_ZeroFloor(t *testing.T) {
	cppi, err := NewCPPI(eth, lusd, decimal.NewFromInt(2), decimal.Zero)
	require.NoError(t, err)

	// Without a floor the whole value is cushion, capped at full exposure.
	order, err := cppi.CheckNewOrder(snapshot(0, 100, 10))
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, lusd, order.Sell)
	assert.Equal(t, eth, order.Buy)
	assert.True(t, decimal.NewFromInt(100).Equal(order.QuantitySell), "got %s", order.QuantitySell)
}

func TestDCA_CheckNewOrder(t *testing.T) {
	closeMs := uint64(10_000)
	dca, err := NewDCA(lusd, eth, 1_000, decimal.NewFromInt(100), 1_000, &closeMs)
	require.NoError(t, err)

	steps := []struct {
		timeMs   uint64
		safe     int64
		expected *decimal.Decimal
	}{
		{timeMs: 500, safe: 1_000},
		{timeMs: 1_000, safe: 1_000, expected: ptr(decimal.NewFromInt(100))},
		{timeMs: 1_999, safe: 900},
		{timeMs: 2_000, safe: 900, expected: ptr(decimal.NewFromInt(100))},
		{timeMs: 5_500, safe: 40, expected: ptr(decimal.NewFromInt(40))},
		{timeMs: 6_000, safe: 0},
		{timeMs: 10_000, safe: 1_000},
	}

	for _, step := range steps {
		order, err := dca.CheckNewOrder(portfoliov1.Snapshot{
			TimeMs:       step.timeMs,
			SafeQuantity: decimal.NewFromInt(step.safe),
			RiskyPrice:   decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		if step.expected == nil {
			assert.Nil(t, order, "time %d", step.timeMs)
			continue
		}
		require.NotNil(t, order, "time %d", step.timeMs)
		assert.Equal(t, lusd, order.Sell)
		assert.Equal(t, eth, order.Buy)
		assert.True(t, step.expected.Equal(order.QuantitySell), "time %d got %s", step.timeMs, order.QuantitySell)
	}
}

func TestNewDCA_InvalidParameters(t *testing.T) {
	closeMs := uint64(5)
	_, err := NewDCA(lusd, eth, 0, decimal.Zero, 10, &closeMs)

	var be *errors.BaseError
	require.ErrorAs(t, err, &be)
	var fields []string
	for _, d := range be.GetDetails() {
		fields = append(fields, d.Field)
	}
	assert.Equal(t, []string{"interval_ms", "quantity", "close_time_ms"}, fields)
}

func ptr[T any](v T) *T {
	return &v
}

func TestNew(t *testing.T) {
	params := Params{
		Risky:         eth,
		Safe:          lusd,
		Multiplier:    decimal.NewFromInt(3),
		Floor:         decimal.NewFromInt(80),
		DCAIntervalMs: 1_000,
		DCAQuantity:   decimal.NewFromInt(10),
	}

	s, err := New(NameCPPI, params)
	require.NoError(t, err)
	assert.Equal(t, NameCPPI, s.Name())

	s, err = New(NameDCA, params)
	require.NoError(t, err)
	assert.Equal(t, NameDCA, s.Name())

	_, err = New("grid", params)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
