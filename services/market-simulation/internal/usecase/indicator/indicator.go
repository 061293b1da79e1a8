// Package indicator maintains a rolling moving average and population variance
// over the last W ticks, one tick at a time.
//
// History may be split between an "old" buffer (already finalised ticks) and a
// "recent" buffer (ticks produced in the current batch). Results do not depend on
// where the split falls.
//
// Every annotated tick carries the remainders dropped by integer division, so
// the exact window sums Σp and Σp² are rebuilt from the newest tick alone and
// both indicators are the floor of the exact window mean and variance.
package indicator

import (
	"math/big"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/fixedpoint"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
)

var (
	// ErrInvalidWindow is returned when the window size is not positive.
	ErrInvalidWindow = errors.NewErrorDetails("moving average window must be greater than zero", errors.InvalidMovingAverageWindow, "window")
	// ErrPreviousMovingAverageMissing is returned when the newest history tick has no moving average.
	ErrPreviousMovingAverageMissing = errors.NewErrorDetails("previous tick has no moving average", errors.PreviousMovingAverageMissing, "moving_average")
	// ErrNewMovingAverageMissing is returned when variance is asked before the moving average of the new tick.
	ErrNewMovingAverageMissing = errors.NewErrorDetails("new tick has no moving average", errors.NewMovingAverageMissing, "moving_average")
	// ErrPreviousVarianceMissing is returned when the newest history tick has no variance.
	ErrPreviousVarianceMissing = errors.NewErrorDetails("previous tick has no variance", errors.PreviousVarianceMissing, "variance")
	// ErrWindowStartMissing is returned when a full window has no tick to drop.
	ErrWindowStartMissing = errors.NewErrorDetails("window is full but the leaving tick is missing", errors.WindowStartMissing, "first")
	// ErrMovingAverageOverflow is returned when the moving average leaves the representable range.
	ErrMovingAverageOverflow = errors.NewErrorDetails("moving average overflow", errors.MovingAverageOverflow, "moving_average")
	// ErrVarianceOverflow is returned when the variance leaves the representable range.
	ErrVarianceOverflow = errors.NewErrorDetails("variance overflow", errors.VarianceOverflow, "variance")
	// ErrNegativeMovingAverage is returned when the moving average drops below zero.
	ErrNegativeMovingAverage = errors.NewErrorDetails("moving average is negative", errors.NegativeMovingAverage, "moving_average")
	// ErrNegativeVariance is returned when the variance drops below zero.
	ErrNegativeVariance = errors.NewErrorDetails("variance is negative", errors.NegativeVariance, "variance")
)

var one = big.NewInt(1)

// Endpoints are the two history ticks the incremental formulas need.
type Endpoints struct {
	// First is the tick that leaves the window once it is full.
	First *tickv1.Tick
	// Last is the newest tick of the history.
	Last *tickv1.Tick
	// Len is the number of history ticks inside the window, min(W, len(old)+len(recent)).
	Len int
}

// SelectWindowEndpoints locates the window endpoints across old ++ recent.
// The returned pointers alias the given slices.
func SelectWindowEndpoints(old, recent []tickv1.Tick, window int) Endpoints {
	total := len(old) + len(recent)
	length := min(window, total)
	if length <= 0 {
		return Endpoints{}
	}

	at := func(i int) *tickv1.Tick {
		if i < len(old) {
			return &old[i]
		}
		return &recent[i-len(old)]
	}

	return Endpoints{
		First: at(total - length),
		Last:  at(total - 1),
		Len:   length,
	}
}

// sums are the exact aggregates of a window of length ticks.
// squares is nil when only the moving average is wanted.
type sums struct {
	length  int
	sum     *big.Int
	squares *big.Int
}

// priorSums rebuilds the window sums of e.Last from its indicators and residual.
func priorSums(e Endpoints, withSquares bool) (sums, error) {
	s := sums{length: e.Len, sum: new(big.Int)}
	if withSquares {
		s.squares = new(big.Int)
	}
	if e.Len == 0 {
		return s, nil
	}
	if e.Last == nil || e.Last.MovingAverage == nil {
		return sums{}, ErrPreviousMovingAverageMissing.WithOperands(e.Len)
	}

	length := big.NewInt(int64(e.Len))
	// Σp = ma·L + r
	s.sum.Mul(fixedpoint.Wide(*e.Last.MovingAverage), length)
	s.sum.Add(s.sum, fixedpoint.Wide(e.Last.Residual.MovingAverage))
	if !withSquares {
		return s, nil
	}

	sumSquared, ok := square(s.sum)
	if !ok {
		return sums{}, ErrVarianceOverflow.WithOperands(s.sum.String())
	}
	if e.Len == 1 {
		s.squares = sumSquared
		return s, nil
	}
	if e.Last.Variance == nil {
		return sums{}, ErrPreviousVarianceMissing.WithOperands(e.Len)
	}

	// L·Σp² − (Σp)² = var·L² + r
	deviation := new(big.Int).Mul(fixedpoint.Wide(*e.Last.Variance), new(big.Int).Mul(length, length))
	deviation.Add(deviation, fixedpoint.Wide(e.Last.Residual.Variance))
	squares, ok := fixedpoint.MulDivWide(deviation.Add(deviation, sumSquared), one, length)
	if !ok {
		return sums{}, ErrVarianceOverflow.WithOperands(e.Len)
	}
	s.squares = squares
	return s, nil
}

// slide adds price to the window and drops e.First once the window is full.
func slide(s sums, e Endpoints, window int, price uint64) (sums, error) {
	p := fixedpoint.Wide(price)
	next := sums{sum: new(big.Int).Add(s.sum, p)}

	var removed *big.Int
	if e.Len < window {
		next.length = e.Len + 1
	} else {
		if e.First == nil {
			return sums{}, ErrWindowStartMissing.WithOperands(e.Len, window)
		}
		removed = fixedpoint.Wide(e.First.Price)
		next.length = window
		next.sum.Sub(next.sum, removed)
	}
	if !fixedpoint.FitsWide(next.sum) {
		return sums{}, ErrMovingAverageOverflow.WithOperands(next.sum.String())
	}
	if s.squares == nil {
		return next, nil
	}

	added, ok := square(p)
	if !ok {
		return sums{}, ErrVarianceOverflow.WithOperands(price)
	}
	next.squares = new(big.Int).Add(s.squares, added)
	if removed != nil {
		dropped, ok := square(removed)
		if !ok {
			return sums{}, ErrVarianceOverflow.WithOperands(removed.String())
		}
		next.squares.Sub(next.squares, dropped)
	}
	if !fixedpoint.FitsWide(next.squares) {
		return sums{}, ErrVarianceOverflow.WithOperands(next.squares.String())
	}
	return next, nil
}

// movingAverage returns floor(Σp / L) and its remainder.
func (s sums) movingAverage() (uint64, uint64, error) {
	if s.sum.Sign() < 0 {
		return 0, 0, ErrNegativeMovingAverage.WithOperands(s.sum.String(), s.length)
	}

	q, r := new(big.Int).QuoRem(s.sum, big.NewInt(int64(s.length)), new(big.Int))
	ma, ok := fixedpoint.NarrowU64(q)
	if !ok {
		return 0, 0, ErrMovingAverageOverflow.WithOperands(q.String())
	}
	return ma, r.Uint64(), nil
}

// variance returns floor((L·Σp² − (Σp)²) / L²) and its remainder.
func (s sums) variance() (uint64, uint64, error) {
	length := big.NewInt(int64(s.length))
	sumSquared, ok := square(s.sum)
	if !ok {
		return 0, 0, ErrVarianceOverflow.WithOperands(s.sum.String())
	}
	deviation, ok := fixedpoint.MulDivWide(s.squares, length, one)
	if !ok {
		return 0, 0, ErrVarianceOverflow.WithOperands(s.squares.String(), s.length)
	}
	deviation.Sub(deviation, sumSquared)
	if deviation.Sign() < 0 {
		return 0, 0, ErrNegativeVariance.WithOperands(deviation.String(), s.length)
	}

	q, r := new(big.Int).QuoRem(deviation, new(big.Int).Mul(length, length), new(big.Int))
	v, ok := fixedpoint.NarrowU64(q)
	if !ok {
		return 0, 0, ErrVarianceOverflow.WithOperands(q.String())
	}
	rem, ok := fixedpoint.NarrowU64(r)
	if !ok {
		return 0, 0, ErrVarianceOverflow.WithOperands(r.String())
	}
	return v, rem, nil
}

func square(v *big.Int) (*big.Int, bool) {
	return fixedpoint.MulDivWide(v, v, one)
}

func nextSums(e Endpoints, window int, price uint64, withSquares bool) (sums, error) {
	if window <= 0 {
		return sums{}, ErrInvalidWindow.WithOperands(window)
	}
	prior, err := priorSums(e, withSquares)
	if err != nil {
		return sums{}, err
	}
	return slide(prior, e, window, price)
}

// MovingAverage returns the moving average including newTick.
func MovingAverage(e Endpoints, window int, newTick tickv1.Tick) (uint64, error) {
	s, err := nextSums(e, window, newTick.Price, false)
	if err != nil {
		return 0, err
	}
	ma, _, err := s.movingAverage()
	return ma, err
}

// Variance returns the population variance including newTick, whose moving
// average must already be set.
func Variance(e Endpoints, window int, newTick tickv1.Tick) (uint64, error) {
	if window <= 0 {
		return 0, ErrInvalidWindow.WithOperands(window)
	}
	if newTick.MovingAverage == nil {
		return 0, ErrNewMovingAverageMissing.WithOperands(newTick.Time)
	}

	s, err := nextSums(e, window, newTick.Price, true)
	if err != nil {
		return 0, err
	}
	v, _, err := s.variance()
	return v, err
}

// Annotate computes both indicators for t given the history old ++ recent.
func Annotate(old, recent []tickv1.Tick, window int, t tickv1.Tick) (tickv1.Tick, error) {
	s, err := nextSums(SelectWindowEndpoints(old, recent, window), window, t.Price, true)
	if err != nil {
		return tickv1.Tick{}, err
	}

	ma, maRest, err := s.movingAverage()
	if err != nil {
		return tickv1.Tick{}, err
	}
	variance, varRest, err := s.variance()
	if err != nil {
		return tickv1.Tick{}, err
	}

	return t.WithIndicators(ma, variance, tickv1.Residual{MovingAverage: maRest, Variance: varRest}), nil
}

// Engine annotates ticks for a fixed window.
type Engine struct {
	window int
}

// NewEngine validates window and creates an Engine.
func NewEngine(window int) (*Engine, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow.WithOperands(window)
	}
	return &Engine{window: window}, nil
}

// Window returns the configured window size.
func (e *Engine) Window() int {
	return e.window
}

// Annotate computes both indicators for t given the history old ++ recent.
func (e *Engine) Annotate(old, recent []tickv1.Tick, t tickv1.Tick) (tickv1.Tick, error) {
	return Annotate(old, recent, e.window, t)
}

// AnnotateAll annotates ticks in order, each one joining the history of the next.
func (e *Engine) AnnotateAll(ticks []tickv1.Tick) ([]tickv1.Tick, error) {
	out := make([]tickv1.Tick, 0, len(ticks))
	for _, t := range ticks {
		annotated, err := e.Annotate(nil, out, t)
		if err != nil {
			return nil, err
		}
		out = append(out, annotated)
	}
	return out, nil
}
