// Package dice rolls dice against an injected random.Provider.
package dice

import "github.com/bkniffler/myranor/internal/services/game/domain/core/random"

// D20 is the die used for every action check.
const D20 = 20

// Result is a single modified die roll.
type Result struct {
	Sides    int `json:"sides"`
	Die      int `json:"die"`
	Modifier int `json:"modifier"`
	Total    int `json:"total"`
}

// Roll draws one die and applies modifier. Total may fall below 1 or above
// sides when the modifier is large.
func Roll(p random.Provider, sides, modifier int) Result {
	die := p.Intn(sides)
	return Result{
		Sides:    sides,
		Die:      die,
		Modifier: modifier,
		Total:    die + modifier,
	}
}
