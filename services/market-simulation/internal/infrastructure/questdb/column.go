package questdb

import (
	"math"
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
)

// ErrValueOutOfRange is returned when a fixed-point value does not fit a QuestDB LONG column.
var ErrValueOutOfRange = errors.NewErrorDetails("value does not fit a LONG column", errors.GeneralRepositoryError, "value")

// Long converts an unsigned fixed-point value to a LONG column value.
func Long(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, ErrValueOutOfRange.WithOperands(v)
	}
	return int64(v), nil
}

// Unsigned converts a LONG column value back to an unsigned fixed-point value.
func Unsigned(v int64) (uint64, error) {
	if v < 0 {
		return 0, ErrValueOutOfRange.WithOperands(v)
	}
	return uint64(v), nil
}

// Timestamp converts Unix milliseconds to a TIMESTAMP column value.
func Timestamp(ms uint64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

// Millis converts a TIMESTAMP column value to Unix milliseconds.
func Millis(t time.Time) uint64 {
	return uint64(t.UnixMilli())
}
