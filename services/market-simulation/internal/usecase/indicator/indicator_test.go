package indicator

import (
	"math"
	"math/big"
	"testing"

	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func u64(v uint64) *uint64 {
	return &v
}

func priced(prices ...uint64) []tickv1.Tick {
	ticks := make([]tickv1.Tick, 0, len(prices))
	for i, p := range prices {
		ticks = append(ticks, tickv1.Tick{Price: p, Time: uint64(i), Volume: 1})
	}
	return ticks
}

func annotated(price, ma, variance uint64) tickv1.Tick {
	return tickv1.Tick{Price: price, Volume: 1, MovingAverage: u64(ma), Variance: u64(variance)}
}

func TestSelectWindowEndpoints(t *testing.T) {
	testCases := []struct {
		name          string
		old, recent   []tickv1.Tick
		window        int
		expectedLen   int
		expectedFirst uint64
		expectedLast  uint64
	}{
		{name: "empty", window: 3},
		{name: "old only, full", old: priced(10, 20, 30), window: 3, expectedLen: 3, expectedFirst: 10, expectedLast: 30},
		{name: "old only, partial", old: priced(10, 20), window: 3, expectedLen: 2, expectedFirst: 10, expectedLast: 20},
		{name: "old longer than window", old: priced(10, 20, 30, 40), window: 3, expectedLen: 3, expectedFirst: 20, expectedLast: 40},
		{name: "split", old: priced(10), recent: priced(20, 30), window: 2, expectedLen: 2, expectedFirst: 20, expectedLast: 30},
		{name: "first in old, last in new", old: priced(10, 20, 30), recent: priced(40), window: 3, expectedLen: 3, expectedFirst: 20, expectedLast: 40},
		{name: "new only", recent: priced(10, 20), window: 5, expectedLen: 2, expectedFirst: 10, expectedLast: 20},
		{name: "new longer than window", recent: priced(10, 20, 30, 40, 50), window: 2, expectedLen: 2, expectedFirst: 40, expectedLast: 50},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := SelectWindowEndpoints(tc.old, tc.recent, tc.window)

			assert.Equal(t, tc.expectedLen, e.Len)
			if tc.expectedLen == 0 {
				assert.Nil(t, e.First)
				assert.Nil(t, e.Last)
				return
			}
			require.NotNil(t, e.First)
			require.NotNil(t, e.Last)
			assert.Equal(t, tc.expectedFirst, e.First.Price)
			assert.Equal(t, tc.expectedLast, e.Last.Price)
		})
	}
}

func TestMovingAverage(t *testing.T) {
	testCases := []struct {
		name        string
		history     []tickv1.Tick
		window      int
		price       uint64
		expected    uint64
		expectedErr error
	}{
		{
			name:     "empty history",
			window:   10,
			price:    20,
			expected: 20,
		},
		{
			name:     "filling",
			history:  []tickv1.Tick{annotated(10, 10, 0)},
			window:   10,
			price:    20,
			expected: 15,
		},
		{
			name:     "full window of two",
			history:  []tickv1.Tick{annotated(10, 10, 0), annotated(20, 15, 25)},
			window:   2,
			price:    30,
			expected: 25,
		},
		{
			name:     "full window of three",
			history:  []tickv1.Tick{annotated(10, 10, 0), annotated(20, 15, 25), annotated(30, 20, 66)},
			window:   3,
			price:    40,
			expected: 30,
		},
		{
			name:     "partial window of three",
			history:  []tickv1.Tick{annotated(10, 10, 0)},
			window:   3,
			price:    40,
			expected: 25,
		},
		{
			name:        "invalid window",
			window:      0,
			price:       20,
			expectedErr: ErrInvalidWindow,
		},
		{
			name:        "previous moving average missing",
			history:     priced(10),
			window:      3,
			price:       20,
			expectedErr: ErrPreviousMovingAverageMissing,
		},
		{
			name:        "negative",
			history:     []tickv1.Tick{annotated(100, 5, 0)},
			window:      1,
			price:       1,
			expectedErr: ErrNegativeMovingAverage,
		},
		{
			name:        "overflow",
			history:     []tickv1.Tick{annotated(1, math.MaxUint64, 0)},
			window:      1,
			price:       3,
			expectedErr: ErrMovingAverageOverflow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := SelectWindowEndpoints(tc.history, nil, tc.window)
			got, err := MovingAverage(e, tc.window, tickv1.Tick{Price: tc.price, Volume: 1})
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestMovingAverage_SplitBuffers(t *testing.T) {
	history := []tickv1.Tick{annotated(10, 10, 0), annotated(20, 15, 25), annotated(30, 20, 66)}
	next := tickv1.Tick{Price: 40, Volume: 1}

	for k := 0; k <= len(history); k++ {
		e := SelectWindowEndpoints(history[:k], history[k:], 3)
		got, err := MovingAverage(e, 3, next)
		require.NoError(t, err)
		assert.Equal(t, uint64(30), got, "split at %d", k)
	}
}

func TestVariance(t *testing.T) {
	testCases := []struct {
		name        string
		history     []tickv1.Tick
		window      int
		next        tickv1.Tick
		expected    uint64
		expectedErr error
	}{
		{
			name:     "empty history",
			window:   3,
			next:     tickv1.Tick{Price: 20, MovingAverage: u64(20)},
			expected: 0,
		},
		{
			name:     "one previous tick",
			history:  []tickv1.Tick{annotated(10, 10, 0)},
			window:   3,
			next:     tickv1.Tick{Price: 20, MovingAverage: u64(15)},
			expected: 25,
		},
		{
			name:     "filling",
			history:  []tickv1.Tick{annotated(10, 10, 0), annotated(20, 15, 25)},
			window:   3,
			next:     tickv1.Tick{Price: 30, MovingAverage: u64(20)},
			expected: 66,
		},
		{
			name:     "full window",
			history:  []tickv1.Tick{annotated(10, 10, 0), annotated(20, 15, 25)},
			window:   2,
			next:     tickv1.Tick{Price: 40, MovingAverage: u64(30)},
			expected: 100,
		},
		{
			name:     "window of one",
			history:  []tickv1.Tick{annotated(10, 10, 0)},
			window:   1,
			next:     tickv1.Tick{Price: 40, MovingAverage: u64(40)},
			expected: 0,
		},
		{
			name:        "new moving average missing",
			history:     []tickv1.Tick{annotated(10, 10, 0)},
			window:      3,
			next:        tickv1.Tick{Price: 20},
			expectedErr: ErrNewMovingAverageMissing,
		},
		{
			name:        "previous moving average missing",
			history:     priced(10),
			window:      3,
			next:        tickv1.Tick{Price: 20, MovingAverage: u64(15)},
			expectedErr: ErrPreviousMovingAverageMissing,
		},
		{
			name:        "previous variance missing",
			history:     []tickv1.Tick{annotated(10, 10, 0), {Price: 20, MovingAverage: u64(15)}},
			window:      3,
			next:        tickv1.Tick{Price: 30, MovingAverage: u64(20)},
			expectedErr: ErrPreviousVarianceMissing,
		},
		{
			name:        "negative",
			history:     []tickv1.Tick{annotated(20, 20, 0), annotated(10, 10, 0)},
			window:      2,
			next:        tickv1.Tick{Price: 10, MovingAverage: u64(10)},
			expectedErr: ErrNegativeVariance,
		},
		{
			name:        "does not fit 64 bits",
			history:     []tickv1.Tick{annotated(1, 1, 0)},
			window:      3,
			next:        tickv1.Tick{Price: math.MaxUint64, MovingAverage: u64(math.MaxUint64)},
			expectedErr: ErrVarianceOverflow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := SelectWindowEndpoints(tc.history, nil, tc.window)
			got, err := Variance(e, tc.window, tc.next)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEngine_AnnotateAll(t *testing.T) {
	engine, err := NewEngine(2)
	require.NoError(t, err)

	ticks, err := engine.AnnotateAll(priced(10, 20, 30, 40))
	require.NoError(t, err)

	var mas, variances []uint64
	for _, tk := range ticks {
		mas = append(mas, *tk.MovingAverage)
		variances = append(variances, *tk.Variance)
	}
	assert.Equal(t, []uint64{10, 15, 25, 35}, mas)
	assert.Equal(t, []uint64{0, 25, 25, 25}, variances)

	_, err = NewEngine(0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

// directWindow returns floor(mean) and population variance of the trailing window ending at i.
func directWindow(prices []uint64, i, window int) (*big.Int, *big.Rat) {
	start := max(0, i-window+1)
	n := big.NewInt(int64(i - start + 1))

	sum := new(big.Int)
	sumSquares := new(big.Int)
	for _, p := range prices[start : i+1] {
		v := new(big.Int).SetUint64(p)
		sum.Add(sum, v)
		sumSquares.Add(sumSquares, new(big.Int).Mul(v, v))
	}

	mean := new(big.Int).Quo(sum, n)
	// (n*Σx² - (Σx)²) / n²
	num := new(big.Int).Sub(new(big.Int).Mul(n, sumSquares), new(big.Int).Mul(sum, sum))
	variance := new(big.Rat).SetFrac(num, new(big.Int).Mul(n, n))
	return mean, variance
}

func prices(t *rapid.T, label string, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = rapid.Uint64Range(1, 1_000_000_000_000).Draw(t, label)
	}
	return out
}

func TestEngine_MatchesDirectRecomputationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		window := rapid.IntRange(1, 30).Draw(t, "window")
		series := prices(t, "price", rapid.IntRange(1, 200).Draw(t, "n"))

		engine, err := NewEngine(window)
		if err != nil {
			t.Fatal(err)
		}
		ticks, err := engine.AnnotateAll(priced(series...))
		if err != nil {
			t.Fatalf("annotate: %v", err)
		}

		for i, tk := range ticks {
			mean, variance := directWindow(series, i, window)
			floor := new(big.Int).Quo(variance.Num(), variance.Denom())
			if *tk.MovingAverage != mean.Uint64() {
				t.Fatalf("tick %d: moving average %d, want %s", i, *tk.MovingAverage, mean)
			}
			if *tk.Variance != floor.Uint64() {
				t.Fatalf("tick %d: variance %d, want %s", i, *tk.Variance, variance.FloatString(3))
			}
		}
	})
}

func TestAnnotate_IndependentOfSplitProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		window := rapid.IntRange(1, 10).Draw(t, "window")
		series := prices(t, "price", rapid.IntRange(1, 40).Draw(t, "n"))

		engine, err := NewEngine(window)
		if err != nil {
			t.Fatal(err)
		}
		history, err := engine.AnnotateAll(priced(series...))
		if err != nil {
			t.Fatalf("annotate: %v", err)
		}

		next := tickv1.Tick{Price: prices(t, "next", 1)[0], Volume: 1}
		expected, err := engine.Annotate(history, nil, next)
		if err != nil {
			t.Fatalf("annotate next: %v", err)
		}

		k := rapid.IntRange(0, len(history)).Draw(t, "split")
		got, err := engine.Annotate(history[:k], history[k:], next)
		if err != nil {
			t.Fatalf("annotate split: %v", err)
		}
		if *got.MovingAverage != *expected.MovingAverage || *got.Variance != *expected.Variance || got.Residual != expected.Residual {
			t.Fatalf("split %d changed result: %d/%d vs %d/%d", k,
				*got.MovingAverage, *got.Variance, *expected.MovingAverage, *expected.Variance)
		}
	})
}

func TestEngine_FlatWindowAfterMovesHasZeroVariance(t *testing.T) {
	// Uneven level walks followed by a run of equal prices: every window
	// made only of the last price must report a variance of exactly zero.
	series := []uint64{
		100_000_000, 100_100_000, 100_200_000, 100_100_000, 99_900_000,
		99_800_000, 99_900_000, 100_300_000, 100_400_000, 100_400_000,
	}
	const window = 7
	for range 3 * window {
		series = append(series, 100_500_000)
	}

	engine, err := NewEngine(window)
	require.NoError(t, err)
	ticks, err := engine.AnnotateAll(priced(series...))
	require.NoError(t, err)

	for i, tk := range ticks {
		mean, variance := directWindow(series, i, window)
		floor := new(big.Int).Quo(variance.Num(), variance.Denom())
		assert.Equal(t, mean.Uint64(), *tk.MovingAverage, "moving average at %d", i)
		assert.Equal(t, floor.Uint64(), *tk.Variance, "variance at %d", i)
	}

	last := ticks[len(ticks)-1]
	assert.Equal(t, uint64(100_500_000), *last.MovingAverage)
	assert.Zero(t, *last.Variance)
	assert.Zero(t, last.Residual)
}
