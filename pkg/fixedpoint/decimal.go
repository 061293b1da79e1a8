package fixedpoint

import (
	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/shopspring/decimal"
)

const scaleExp = 6

// ErrDecimalOutOfRange is returned when a decimal is negative or too large for 64 bits.
var ErrDecimalOutOfRange = errors.NewErrorDetails("decimal has no fixed-point representation", errors.DecimalOutOfRange, "value")

// ToDecimal returns the human value of a fixed-point integer, e.g. 1_500_000 -> 1.5.
func ToDecimal(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(Wide(v), -scaleExp)
}

// FromDecimal converts a human value into its fixed-point integer, truncating
// digits beyond the sixth decimal.
func FromDecimal(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() {
		return 0, ErrDecimalOutOfRange.WithOperands(d.String())
	}
	scaled := d.Shift(scaleExp).Truncate(0)
	if scaled.BigInt().Cmp(maxU64) > 0 {
		return 0, ErrDecimalOutOfRange.WithOperands(d.String())
	}
	return scaled.BigInt().Uint64(), nil
}
