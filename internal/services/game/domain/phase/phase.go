// Package phase defines the round cycle every campaign moves through.
//
// The order is fixed: maintenance, action, conversion, reset, then
// maintenance of the next round. Callers never request a target phase; the
// machine computes it from the current one.
package phase

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Phase is one step of a round.
type Phase string

const (
	// Maintenance charges upkeep and collects income.
	Maintenance Phase = "maintenance"
	// Action is the only phase accepting budgeted player actions.
	Action Phase = "action"
	// Conversion resolves queued resource transformations.
	Conversion Phase = "conversion"
	// Reset clears per-round scratch state.
	Reset Phase = "reset"
)

// Initial is the phase a new campaign starts in.
const Initial = Maintenance

// FirstRound is the round a new campaign starts in.
const FirstRound = 1

var order = []Phase{Maintenance, Action, Conversion, Reset}

// All returns the phases of one round in order.
func All() []Phase {
	return slices.Clone(order)
}

// Valid reports whether p is one of the four phases.
func (p Phase) Valid() bool {
	return p.index() >= 0
}

func (p Phase) index() int {
	for i, candidate := range order {
		if candidate == p {
			return i
		}
	}
	return -1
}

func (p Phase) String() string {
	return string(p)
}

// Next returns the phase that follows p. Unknown phases restart the cycle.
func Next(p Phase) Phase {
	i := p.index()
	if i < 0 {
		return Initial
	}
	return order[(i+1)%len(order)]
}

// Transition returns the phase and round that follow (p, round). The round
// only advances when reset wraps back to maintenance.
func Transition(p Phase, round int) (Phase, int) {
	next := Next(p)
	if p == Reset && next == Maintenance {
		return next, round + 1
	}
	return next, round
}

// Parse parses a phase label.
func Parse(value string) (Phase, error) {
	p := Phase(value)
	if !p.Valid() {
		return "", fmt.Errorf("unknown phase %q", value)
	}
	return p, nil
}

// UnmarshalJSON rejects unknown phase labels. The empty label decodes to the
// zero Phase of a campaign that was never created.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*p = ""
		return nil
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
