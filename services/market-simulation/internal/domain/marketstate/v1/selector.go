package v1

import (
	"math/rand/v2"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
)

// ErrUnknownPolicy is returned by NewSelector for an unsupported policy name.
var ErrUnknownPolicy = errors.NewErrorDetails("unknown regime policy", errors.UnknownSelectorPolicy, "regime_policy")

// Selector picks the regime of the next market-state window.
type Selector interface {
	Next(current State, rng *rand.Rand) State
}

// FixedSelector always keeps the same regime.
type FixedSelector struct {
	State State
}

// Next implements Selector.
func (s FixedSelector) Next(State, *rand.Rand) State {
	return s.State
}

// TransitionSelector walks the transition graph, uniformly among reachable regimes.
type TransitionSelector struct{}

// Next implements Selector.
func (TransitionSelector) Next(current State, rng *rand.Rand) State {
	next := current.NextStates()
	if len(next) == 0 {
		return current
	}
	return next[rng.IntN(len(next))]
}

// UniformSelector draws any regime, ignoring the transition graph.
type UniformSelector struct{}

// Next implements Selector.
func (UniformSelector) Next(_ State, rng *rand.Rand) State {
	return AllStates[rng.IntN(len(AllStates))]
}

// Policy names accepted by NewSelector.
const (
	PolicyFixed      = "fixed"
	PolicyTransition = "transition"
	PolicyUniform    = "uniform"
)

// NewSelector returns the selector registered under policy.
// initial is the regime kept by the fixed policy.
func NewSelector(policy string, initial State) (Selector, error) {
	if !initial.Valid() {
		return nil, ErrUnknownState.WithOperands(initial.String())
	}

	switch policy {
	case PolicyFixed:
		return FixedSelector{State: initial}, nil
	case PolicyTransition:
		return TransitionSelector{}, nil
	case PolicyUniform:
		return UniformSelector{}, nil
	default:
		return nil, ErrUnknownPolicy.WithOperands(policy)
	}
}
