package interval

import (
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
)

// ErrUnsupportedInterval is returned for an interval name outside the registry.
var ErrUnsupportedInterval = errors.NewErrorDetails("unsupported interval", errors.UnsupportedInterval, "interval")

// Interval is a bar duration with its display name.
type Interval struct {
	Name     string
	Duration time.Duration
}

// Supported intervals.
var (
	Interval1m  = Interval{Name: "1m", Duration: time.Minute}
	Interval5m  = Interval{Name: "5m", Duration: 5 * time.Minute}
	Interval15m = Interval{Name: "15m", Duration: 15 * time.Minute}
	Interval30m = Interval{Name: "30m", Duration: 30 * time.Minute}
	Interval1h  = Interval{Name: "1h", Duration: time.Hour}
	Interval4h  = Interval{Name: "4h", Duration: 4 * time.Hour}
	Interval1d  = Interval{Name: "1d", Duration: 24 * time.Hour}
	Interval1w  = Interval{Name: "1w", Duration: 7 * 24 * time.Hour}
)

// AllIntervals lists the supported intervals, shortest first.
var AllIntervals = []Interval{
	Interval1m, Interval5m, Interval15m, Interval30m,
	Interval1h, Interval4h, Interval1d, Interval1w,
}

var registry = make(map[string]Interval)

func init() {
	for _, i := range AllIntervals {
		registry[i.Name] = i
	}
}

// GetInterval returns an interval by name.
func GetInterval(name string) (Interval, error) {
	i, ok := registry[name]
	if !ok {
		return Interval{}, ErrUnsupportedInterval.WithOperands(name)
	}
	return i, nil
}

// Parse resolves every name, failing on the first unsupported one.
func Parse(names []string) ([]Interval, error) {
	intervals := make([]Interval, 0, len(names))
	for _, name := range names {
		i, err := GetInterval(name)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, i)
	}
	return intervals, nil
}

// Millis returns the bucket duration in milliseconds, the unit of tick time.
func (i Interval) Millis() uint64 {
	return uint64(i.Duration / time.Millisecond)
}

// BucketStart returns the start of the bucket holding timeMs.
// Buckets are aligned on the Unix epoch, so weekly bars start on Thursdays.
func (i Interval) BucketStart(timeMs uint64) uint64 {
	d := i.Millis()
	return timeMs - timeMs%d
}
