package check

import (
	"encoding/json"
	"fmt"
	"math"
)

// Tier is a discrete outcome band.
type Tier string

const (
	TierVeryGood Tier = "veryGood"
	TierGood     Tier = "good"
	TierSuccess  Tier = "success"
	TierPoor     Tier = "poor"
	TierFail     Tier = "fail"
)

// Rank orders tiers: fail is 0, veryGood is 4. Unknown tiers rank -1.
func (t Tier) Rank() int {
	switch t {
	case TierFail:
		return 0
	case TierPoor:
		return 1
	case TierSuccess:
		return 2
	case TierGood:
		return 3
	case TierVeryGood:
		return 4
	default:
		return -1
	}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t.Rank() >= 0
}

// Succeeded reports whether the tier meets the difficulty class.
func (t Tier) Succeeded() bool {
	return t.Rank() >= TierSuccess.Rank()
}

func (t Tier) String() string {
	return string(t)
}

// ParseTier parses a tier label.
func ParseTier(value string) (Tier, error) {
	tier := Tier(value)
	if !tier.Valid() {
		return "", fmt.Errorf("unknown success tier %q", value)
	}
	return tier, nil
}

// UnmarshalJSON rejects unknown tier labels.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTier(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Bands sets the distance from the difficulty class for each threshold.
// VeryGood and Good are margins above the class; Poor is the margin below it
// that still avoids a fail.
type Bands struct {
	VeryGood int `json:"veryGood"`
	Good     int `json:"good"`
	Poor     int `json:"poor"`
}

// DefaultBands is veryGood at dc+10, good at dc+5 and poor down to dc-5.
var DefaultBands = Bands{VeryGood: 10, Good: 5, Poor: 5}

// Normalized returns bands with VeryGood >= Good >= 0 and Poor >= 0, so the
// resulting tiers stay contiguous and ordered.
func (b Bands) Normalized() Bands {
	if b.Good < 0 {
		b.Good = 0
	}
	if b.VeryGood < b.Good {
		b.VeryGood = b.Good
	}
	if b.Poor < 0 {
		b.Poor = 0
	}
	return b
}

// Resolve maps rollTotal against dc into a tier using these bands.
func (b Bands) Resolve(dc, rollTotal int) Tier {
	b = b.Normalized()
	switch {
	case marginAtLeast(dc, rollTotal, b.VeryGood):
		return TierVeryGood
	case marginAtLeast(dc, rollTotal, b.Good):
		return TierGood
	case marginAtLeast(dc, rollTotal, 0):
		return TierSuccess
	case marginAtLeast(dc, rollTotal, -b.Poor):
		return TierPoor
	default:
		return TierFail
	}
}

// marginAtLeast reports rollTotal-dc >= floor without overflowing int.
func marginAtLeast(dc, rollTotal, floor int) bool {
	switch {
	case dc < 0 && rollTotal > math.MaxInt+dc:
		// margin exceeds MaxInt
		return true
	case dc > 0 && rollTotal < math.MinInt+dc:
		// margin is below MinInt
		return false
	default:
		return rollTotal-dc >= floor
	}
}

// ResolveSuccessTier maps rollTotal against dc using DefaultBands.
func ResolveSuccessTier(dc, rollTotal int) Tier {
	return DefaultBands.Resolve(dc, rollTotal)
}
