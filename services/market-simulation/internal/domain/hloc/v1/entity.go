package v1

import (
	"math/bits"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
)

var (
	// ErrInvalidDuration is returned when the bucket duration is zero.
	ErrInvalidDuration = errors.NewErrorDetails("bucket duration must be greater than zero", errors.InvalidDuration, "bucket_duration_ms")
	// ErrTicksNotOrdered is returned when a tick is older than its predecessor.
	ErrTicksNotOrdered = errors.NewErrorDetails("ticks must be ordered by time", errors.TicksNotOrdered, "time")
	// ErrVolumeOverflow is returned when the summed volume of a bar does not fit 64 bits.
	ErrVolumeOverflow = errors.NewErrorDetails("bar volume overflow", errors.HlocVolumeOverflow, "volume")
)

// Hloc is an OHLC bar. Time is the bucket start in milliseconds.
type Hloc struct {
	Time   uint64
	Open   uint64
	High   uint64
	Low    uint64
	Close  uint64
	Volume uint64
	Ticks  int
}

// FromTicks folds time-ordered ticks into one bar per bucket of bucketDurationMs.
// A bar opens at the close of the previous bar and tracks running high and low.
func FromTicks(ticks []tickv1.Tick, bucketDurationMs uint64) ([]Hloc, error) {
	if bucketDurationMs == 0 {
		return nil, ErrInvalidDuration.WithOperands(bucketDurationMs)
	}

	bars := make([]Hloc, 0)
	if len(ticks) == 0 {
		return bars, nil
	}

	first := ticks[0]
	current := Hloc{
		Time:   bucketStart(first.Time, bucketDurationMs),
		Open:   first.Price,
		High:   first.Price,
		Low:    first.Price,
		Close:  first.Price,
		Volume: first.Volume,
		Ticks:  1,
	}
	lastTime := first.Time

	for _, t := range ticks[1:] {
		if t.Time < lastTime {
			return nil, ErrTicksNotOrdered.WithOperands(lastTime, t.Time)
		}
		lastTime = t.Time

		bucket := bucketStart(t.Time, bucketDurationMs)
		if bucket != current.Time {
			bars = append(bars, current)
			open := current.Close
			current = Hloc{
				Time:   bucket,
				Open:   open,
				High:   max(open, t.Price),
				Low:    min(open, t.Price),
				Close:  t.Price,
				Volume: t.Volume,
				Ticks:  1,
			}
			continue
		}

		current.High = max(current.High, t.Price)
		current.Low = min(current.Low, t.Price)
		current.Close = t.Price
		sum, carry := bits.Add64(current.Volume, t.Volume, 0)
		if carry != 0 {
			return nil, ErrVolumeOverflow.WithOperands(current.Time, current.Volume, t.Volume)
		}
		current.Volume = sum
		current.Ticks++
	}

	return append(bars, current), nil
}

func bucketStart(timeMs, durationMs uint64) uint64 {
	return timeMs - timeMs%durationMs
}
