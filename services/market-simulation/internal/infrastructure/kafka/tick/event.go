package tick

import (
	"encoding/json"

	"github.com/d-banana/safe-portfolio-management/pkg/fixedpoint"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
)

// Event is the JSON payload of one tick. Values are decimal strings so
// consumers never see the fixed-point scale.
type Event struct {
	RunID         string  `json:"run_id"`
	Symbol        string  `json:"symbol"`
	Seq           int     `json:"seq"`
	TimeMs        uint64  `json:"time_ms"`
	Price         string  `json:"price"`
	Volume        string  `json:"volume"`
	Side          string  `json:"side"`
	MovingAverage *string `json:"moving_average,omitempty"`
	Variance      *string `json:"variance,omitempty"`
}

// NewEvent converts the seq-th tick of a run.
func NewEvent(runID, symbol string, seq int, t tickv1.Tick) Event {
	return Event{
		RunID:         runID,
		Symbol:        symbol,
		Seq:           seq,
		TimeMs:        t.Time,
		Price:         fixedpoint.ToDecimal(t.Price).String(),
		Volume:        fixedpoint.ToDecimal(t.Volume).String(),
		Side:          t.Side(),
		MovingAverage: decimalString(t.MovingAverage),
		Variance:      decimalString(t.Variance),
	}
}

func decimalString(v *uint64) *string {
	if v == nil {
		return nil
	}
	s := fixedpoint.ToDecimal(*v).String()
	return &s
}

// ToBytes encodes the event.
func (e Event) ToBytes() ([]byte, error) {
	return json.Marshal(e)
}
