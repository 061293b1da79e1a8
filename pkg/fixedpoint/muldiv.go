// Package fixedpoint holds the integer arithmetic used for prices and volumes.
//
// Prices, volumes and amplifiers are unsigned integers with an implicit scale of
// Scale, so 1.5 is stored as 1_500_000. Every product goes through a wider
// intermediate before the division, and every narrowing is checked.
package fixedpoint

import (
	"math"
	"math/big"
	"math/bits"
)

// Scale is the implicit denominator of every fixed-point quantity.
const Scale uint64 = 1_000_000

// WideBits is the signed width of the intermediate used by MulDivWide.
const WideBits = 256

var (
	maxWide = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), WideBits-1), big.NewInt(1))
	minWide = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), WideBits-1))
	maxU64  = new(big.Int).SetUint64(math.MaxUint64)
)

// MulDivU64 returns floor(x*mul/div) computed on 128 bits.
// ok is false when div is zero or the quotient does not fit 64 bits.
func MulDivU64(x, mul, div uint64) (result uint64, ok bool) {
	if div == 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(x, mul)
	// bits.Div64 panics when the quotient overflows.
	if hi >= div {
		return 0, false
	}
	q, _ := bits.Div64(hi, lo, div)
	return q, true
}

// MulDivI64 returns x*mul/div truncated toward zero, computed on 128 bits.
// ok is false when div is zero or the quotient does not fit an int64.
func MulDivI64(x, mul, div int64) (result int64, ok bool) {
	if div == 0 {
		return 0, false
	}
	negative := (x < 0) != (mul < 0) != (div < 0)
	if x == 0 || mul == 0 {
		return 0, true
	}

	q, ok := MulDivU64(abs64(x), abs64(mul), abs64(div))
	if !ok {
		return 0, false
	}
	if negative {
		if q > 1<<63 {
			return 0, false
		}
		return int64(-q), true
	}
	if q > math.MaxInt64 {
		return 0, false
	}
	return int64(q), true
}

// MulDivWide returns x*mul/div truncated toward zero.
// ok is false when div is zero or when the product leaves the signed WideBits range.
func MulDivWide(x, mul, div *big.Int) (*big.Int, bool) {
	if div.Sign() == 0 {
		return nil, false
	}
	product := new(big.Int).Mul(x, mul)
	if !FitsWide(product) {
		return nil, false
	}
	return product.Quo(product, div), true
}

// FitsWide reports whether v fits the signed WideBits intermediate.
func FitsWide(v *big.Int) bool {
	return v.Cmp(maxWide) <= 0 && v.Cmp(minWide) >= 0
}

// NarrowU64 converts v back to 64 bits. ok is false when v is negative or too large.
func NarrowU64(v *big.Int) (uint64, bool) {
	if v.Sign() < 0 || v.Cmp(maxU64) > 0 {
		return 0, false
	}
	return v.Uint64(), true
}

// Wide lifts a fixed-point value into the wide intermediate.
func Wide(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// abs64 returns |v| as uint64; math.MinInt64 maps to 1<<63.
func abs64(v int64) uint64 {
	if v < 0 {
		return uint64(^v) + 1
	}
	return uint64(v)
}
