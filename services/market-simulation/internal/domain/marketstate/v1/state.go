package v1

import (
	"fmt"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	actorv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/actor/v1"
)

// ErrUnknownState is returned when a name matches no regime.
var ErrUnknownState = errors.NewErrorDetails("unknown market state", errors.UnknownMarketState, "market_state")

// State is a market regime. Its name reads as
// "market buyer vs limit seller" then "market seller vs limit buyer".
type State int

// The nine regimes.
const (
	MBEqualLSMSEqualLB State = iota
	MBGreaterLSMSGreaterLB
	MBLessLSMSLessLB
	MBGreaterLSMSEqualLB
	MBGreaterLSMSLessLB
	MBEqualLSMSLessLB
	MBEqualLSMSGreaterLB
	MBLessLSMSGreaterLB
	MBLessLSMSEqualLB
)

// AllStates lists every regime in declaration order.
var AllStates = []State{
	MBEqualLSMSEqualLB,
	MBGreaterLSMSGreaterLB,
	MBLessLSMSLessLB,
	MBGreaterLSMSEqualLB,
	MBGreaterLSMSLessLB,
	MBEqualLSMSLessLB,
	MBEqualLSMSGreaterLB,
	MBLessLSMSGreaterLB,
	MBLessLSMSEqualLB,
}

var names = map[State]string{
	MBEqualLSMSEqualLB:     "MB_EQUAL_LS_MS_EQUAL_LB",
	MBGreaterLSMSGreaterLB: "MB_GREATER_LS_MS_GREATER_LB",
	MBLessLSMSLessLB:       "MB_LESS_LS_MS_LESS_LB",
	MBGreaterLSMSEqualLB:   "MB_GREATER_LS_MS_EQUAL_LB",
	MBGreaterLSMSLessLB:    "MB_GREATER_LS_MS_LESS_LB",
	MBEqualLSMSLessLB:      "MB_EQUAL_LS_MS_LESS_LB",
	MBEqualLSMSGreaterLB:   "MB_EQUAL_LS_MS_GREATER_LB",
	MBLessLSMSGreaterLB:    "MB_LESS_LS_MS_GREATER_LB",
	MBLessLSMSEqualLB:      "MB_LESS_LS_MS_EQUAL_LB",
}

var powers = map[State]actorv1.Power{
	MBEqualLSMSEqualLB:     {MarketBuyerVsLimitSeller: actorv1.Equal, MarketSellerVsLimitBuyer: actorv1.Equal},
	MBGreaterLSMSGreaterLB: {MarketBuyerVsLimitSeller: actorv1.Greater, MarketSellerVsLimitBuyer: actorv1.Greater},
	MBLessLSMSLessLB:       {MarketBuyerVsLimitSeller: actorv1.Less, MarketSellerVsLimitBuyer: actorv1.Less},
	MBGreaterLSMSEqualLB:   {MarketBuyerVsLimitSeller: actorv1.Greater, MarketSellerVsLimitBuyer: actorv1.Equal},
	MBGreaterLSMSLessLB:    {MarketBuyerVsLimitSeller: actorv1.Greater, MarketSellerVsLimitBuyer: actorv1.Less},
	MBEqualLSMSLessLB:      {MarketBuyerVsLimitSeller: actorv1.Equal, MarketSellerVsLimitBuyer: actorv1.Less},
	MBEqualLSMSGreaterLB:   {MarketBuyerVsLimitSeller: actorv1.Equal, MarketSellerVsLimitBuyer: actorv1.Greater},
	MBLessLSMSGreaterLB:    {MarketBuyerVsLimitSeller: actorv1.Less, MarketSellerVsLimitBuyer: actorv1.Greater},
	MBLessLSMSEqualLB:      {MarketBuyerVsLimitSeller: actorv1.Less, MarketSellerVsLimitBuyer: actorv1.Equal},
}

// Regimes move one power step at a time, through the balanced state for sign flips.
var transitions = map[State][]State{
	MBEqualLSMSEqualLB:     {MBEqualLSMSLessLB, MBEqualLSMSGreaterLB, MBGreaterLSMSEqualLB, MBLessLSMSEqualLB},
	MBGreaterLSMSGreaterLB: {MBGreaterLSMSEqualLB, MBEqualLSMSGreaterLB},
	MBLessLSMSLessLB:       {MBEqualLSMSLessLB, MBLessLSMSEqualLB},
	MBGreaterLSMSEqualLB:   {MBGreaterLSMSGreaterLB, MBGreaterLSMSLessLB, MBEqualLSMSEqualLB},
	MBGreaterLSMSLessLB:    {MBGreaterLSMSEqualLB, MBEqualLSMSLessLB},
	MBEqualLSMSLessLB:      {MBGreaterLSMSLessLB, MBLessLSMSLessLB, MBEqualLSMSEqualLB},
	MBEqualLSMSGreaterLB:   {MBGreaterLSMSGreaterLB, MBLessLSMSGreaterLB, MBEqualLSMSEqualLB},
	MBLessLSMSGreaterLB:    {MBEqualLSMSGreaterLB, MBLessLSMSEqualLB},
	MBLessLSMSEqualLB:      {MBLessLSMSLessLB, MBLessLSMSGreaterLB, MBEqualLSMSEqualLB},
}

func (s State) String() string {
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState returns the state with the given name.
func ParseState(name string) (State, error) {
	for s, n := range names {
		if n == name {
			return s, nil
		}
	}
	return 0, ErrUnknownState.WithOperands(name)
}

// Valid reports whether s is one of the nine regimes.
func (s State) Valid() bool {
	_, ok := names[s]
	return ok
}

// ActorPower returns the power pair the regime imposes on both sides of the book.
func (s State) ActorPower() actorv1.Power {
	return powers[s]
}

// NextStates returns the regimes reachable from s. The returned slice must not be modified.
func (s State) NextStates() []State {
	return transitions[s]
}

// CanTransitionTo reports whether next is reachable from s.
func (s State) CanTransitionTo(next State) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}
