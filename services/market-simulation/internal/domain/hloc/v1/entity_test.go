package v1

import (
	"math"
	"testing"

	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func tick(price, timeMs, volume uint64) tickv1.Tick {
	return tickv1.Tick{Price: price, Time: timeMs, Volume: volume}
}

func TestFromTicks(t *testing.T) {
	testCases := []struct {
		name     string
		ticks    []tickv1.Tick
		duration uint64
		assertFn func(t *testing.T, bars []Hloc, err error)
	}{
		{
			name:     "zero duration",
			ticks:    []tickv1.Tick{tick(10, 0, 1)},
			duration: 0,
			assertFn: func(t *testing.T, bars []Hloc, err error) {
				assert.ErrorIs(t, err, ErrInvalidDuration)
			},
		},
		{
			name:     "empty",
			duration: 10,
			assertFn: func(t *testing.T, bars []Hloc, err error) {
				require.NoError(t, err)
				assert.Empty(t, bars)
			},
		},
		{
			name:     "single bucket",
			ticks:    []tickv1.Tick{tick(10, 1, 1), tick(15, 2, 2), tick(8, 3, 3), tick(12, 9, 4)},
			duration: 10,
			assertFn: func(t *testing.T, bars []Hloc, err error) {
				require.NoError(t, err)
				assert.Equal(t, []Hloc{{Time: 0, Open: 10, High: 15, Low: 8, Close: 12, Volume: 10, Ticks: 4}}, bars)
			},
		},
		{
			name:     "new bar opens at previous close",
			ticks:    []tickv1.Tick{tick(10, 5, 1), tick(12, 8, 1), tick(20, 25, 3), tick(18, 29, 1)},
			duration: 10,
			assertFn: func(t *testing.T, bars []Hloc, err error) {
				require.NoError(t, err)
				assert.Equal(t, []Hloc{
					{Time: 0, Open: 10, High: 12, Low: 10, Close: 12, Volume: 2, Ticks: 2},
					{Time: 20, Open: 12, High: 20, Low: 12, Close: 18, Volume: 4, Ticks: 2},
				}, bars)
			},
		},
		{
			name:     "not ordered",
			ticks:    []tickv1.Tick{tick(10, 5, 1), tick(10, 4, 1)},
			duration: 10,
			assertFn: func(t *testing.T, bars []Hloc, err error) {
				assert.ErrorIs(t, err, ErrTicksNotOrdered)
			},
		},
		{
			name:     "volume overflow",
			ticks:    []tickv1.Tick{tick(10, 1, math.MaxUint64), tick(10, 2, 1)},
			duration: 10,
			assertFn: func(t *testing.T, bars []Hloc, err error) {
				assert.ErrorIs(t, err, ErrVolumeOverflow)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bars, err := FromTicks(tc.ticks, tc.duration)
			tc.assertFn(t, bars, err)
		})
	}
}

func drawTicks(t *rapid.T) []tickv1.Tick {
	n := rapid.IntRange(1, 200).Draw(t, "n")
	ticks := make([]tickv1.Tick, 0, n)
	now := rapid.Uint64Range(0, 1_000_000).Draw(t, "start")
	for i := 0; i < n; i++ {
		now += rapid.Uint64Range(0, 500).Draw(t, "gap")
		ticks = append(ticks, tick(
			rapid.Uint64Range(1, 1_000_000).Draw(t, "price"),
			now,
			rapid.Uint64Range(1, 1_000_000).Draw(t, "volume"),
		))
	}
	return ticks
}

func TestFromTicks_BarInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ticks := drawTicks(t)
		duration := rapid.Uint64Range(1, 5_000).Draw(t, "duration")

		bars, err := FromTicks(ticks, duration)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var volume uint64
		count := 0
		for i, bar := range bars {
			if bar.Time%duration != 0 {
				t.Fatalf("bar %d starts off bucket: %d", i, bar.Time)
			}
			if bar.High < max(bar.Open, bar.Close) || bar.Low > min(bar.Open, bar.Close) {
				t.Fatalf("bar %d extrema do not bound open/close: %+v", i, bar)
			}
			if i > 0 {
				if bars[i-1].Time >= bar.Time {
					t.Fatalf("bars not strictly ordered at %d", i)
				}
				if bars[i-1].Close != bar.Open {
					t.Fatalf("bar %d does not open at previous close", i)
				}
			}
			volume += bar.Volume
			count += bar.Ticks
		}

		var expectedVolume uint64
		for _, tk := range ticks {
			expectedVolume += tk.Volume
		}
		if volume != expectedVolume || count != len(ticks) {
			t.Fatalf("volume %d/%d ticks %d/%d", volume, expectedVolume, count, len(ticks))
		}
		if bars[0].Open != ticks[0].Price || bars[len(bars)-1].Close != ticks[len(ticks)-1].Price {
			t.Fatalf("first open or last close does not match ticks")
		}
	})
}

func TestFromTicks_ReaggregationKeepsBoundariesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ticks := drawTicks(t)
		duration := rapid.Uint64Range(1, 5_000).Draw(t, "duration")

		bars, err := FromTicks(ticks, duration)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		synthetic := make([]tickv1.Tick, 0, len(bars))
		for _, bar := range bars {
			synthetic = append(synthetic, tick(bar.Close, bar.Time, bar.Volume))
		}

		again, err := FromTicks(synthetic, duration)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again) != len(bars) {
			t.Fatalf("got %d bars, want %d", len(again), len(bars))
		}
		for i := range bars {
			if again[i].Time != bars[i].Time || again[i].Volume != bars[i].Volume {
				t.Fatalf("bar %d boundary changed: %+v vs %+v", i, again[i], bars[i])
			}
		}
	})
}
