// Package rules holds the balance tables the decider reads.
//
// Rules are passed explicitly to the decider instead of living in a global so
// tests can pin their own tables and a server can reload from disk.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bkniffler/myranor/internal/services/game/domain/core/check"
)

// Tier is the size class of an office or organization.
type Tier string

const (
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
)

// Valid reports whether t is a known size class.
func (t Tier) Valid() bool {
	switch t {
	case TierSmall, TierMedium, TierLarge:
		return true
	default:
		return false
	}
}

// ParseTier parses a holding size class.
func ParseTier(value string) (Tier, error) {
	t := Tier(value)
	if !t.Valid() {
		return "", fmt.Errorf("unknown holding tier %q", value)
	}
	return t, nil
}

// TierTable holds one value per holding size class.
type TierTable struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

// For returns the value for tier, or zero for unknown tiers.
func (t TierTable) For(tier Tier) int {
	switch tier {
	case TierSmall:
		return t.Small
	case TierMedium:
		return t.Medium
	case TierLarge:
		return t.Large
	default:
		return 0
	}
}

// GatherMode selects what a gather action produces.
type GatherMode string

const (
	// GatherDomain works the land for raw materials.
	GatherDomain GatherMode = "domain"
	// GatherWorkshop refines raw materials into special materials.
	GatherWorkshop GatherMode = "workshop"
)

// Yield is the output per investment for each success tier.
type Yield struct {
	VeryGood int `json:"veryGood"`
	Good     int `json:"good"`
	Success  int `json:"success"`
	Poor     int `json:"poor"`
	Fail     int `json:"fail"`
}

// For returns the yield per investment for tier.
func (y Yield) For(tier check.Tier) int {
	switch tier {
	case check.TierVeryGood:
		return y.VeryGood
	case check.TierGood:
		return y.Good
	case check.TierSuccess:
		return y.Success
	case check.TierPoor:
		return y.Poor
	default:
		return y.Fail
	}
}

// GatherRule configures one gather mode.
type GatherRule struct {
	DC int `json:"dc"`
	// RawPerInvestment is consumed from raw materials for each investment.
	RawPerInvestment int   `json:"rawPerInvestment"`
	Yield            Yield `json:"yield"`
	// ProducesSpecial routes the yield to special instead of raw materials.
	ProducesSpecial bool `json:"producesSpecial"`
}

// Economy is a resource bundle.
type Economy struct {
	Gold             int `json:"gold"`
	RawMaterials     int `json:"rawMaterials"`
	SpecialMaterials int `json:"specialMaterials"`
}

// Rules is the full balance table.
type Rules struct {
	StartingEconomy     Economy `json:"startingEconomy"`
	BaseActionsPerRound int     `json:"baseActionsPerRound"`
	BaseLabor           int     `json:"baseLabor"`
	BaseInfluence       int     `json:"baseInfluence"`
	MaxInvestments      int     `json:"maxInvestments"`

	OfficeCost      TierTable `json:"officeCost"`
	OfficeUpkeep    TierTable `json:"officeUpkeep"`
	OfficeIncome    TierTable `json:"officeIncome"`
	OfficeInfluence TierTable `json:"officeInfluence"`

	OrganizationCost          TierTable `json:"organizationCost"`
	OrganizationUpkeep        TierTable `json:"organizationUpkeep"`
	OrganizationLabor         TierTable `json:"organizationLabor"`
	OrganizationInfluenceCost int       `json:"organizationInfluenceCost"`

	Domain   GatherRule `json:"domain"`
	Workshop GatherRule `json:"workshop"`

	// ConversionRate is how many raw materials refine into one special material.
	ConversionRate int         `json:"conversionRate"`
	Bands          check.Bands `json:"bands"`

	MaxCampaignNameLength int `json:"maxCampaignNameLength"`
	MaxDisplayNameLength  int `json:"maxDisplayNameLength"`
	MaxNoteLength         int `json:"maxNoteLength"`
}

// Default returns the built-in balance table.
func Default() Rules {
	return Rules{
		StartingEconomy:     Economy{Gold: 20, RawMaterials: 2},
		BaseActionsPerRound: 2,
		BaseLabor:           4,
		BaseInfluence:       1,
		MaxInvestments:      10,

		OfficeCost:      TierTable{Small: 8, Medium: 16, Large: 30},
		OfficeUpkeep:    TierTable{Small: 1, Medium: 2, Large: 4},
		OfficeIncome:    TierTable{Small: 3, Medium: 6, Large: 11},
		OfficeInfluence: TierTable{Small: 1, Medium: 2, Large: 3},

		OrganizationCost:          TierTable{Small: 6, Medium: 12, Large: 24},
		OrganizationUpkeep:        TierTable{Small: 1, Medium: 2, Large: 3},
		OrganizationLabor:         TierTable{Small: 1, Medium: 2, Large: 3},
		OrganizationInfluenceCost: 1,

		Domain: GatherRule{
			DC:    10,
			Yield: Yield{VeryGood: 4, Good: 3, Success: 2, Poor: 1, Fail: 0},
		},
		Workshop: GatherRule{
			DC:               12,
			RawPerInvestment: 1,
			Yield:            Yield{VeryGood: 3, Good: 2, Success: 2, Poor: 1, Fail: 0},
			ProducesSpecial:  true,
		},

		ConversionRate: 3,
		Bands:          check.DefaultBands,

		MaxCampaignNameLength: 80,
		MaxDisplayNameLength:  40,
		MaxNoteLength:         2000,
	}
}

// Gather returns the rule for mode.
func (r Rules) Gather(mode GatherMode) (GatherRule, bool) {
	switch mode {
	case GatherDomain:
		return r.Domain, true
	case GatherWorkshop:
		return r.Workshop, true
	default:
		return GatherRule{}, false
	}
}

// Validate rejects tables that would make the economy inconsistent.
func (r Rules) Validate() error {
	var errs []error
	if r.BaseActionsPerRound < 1 {
		errs = append(errs, errors.New("baseActionsPerRound must be at least 1"))
	}
	if r.BaseLabor < 0 || r.BaseInfluence < 0 {
		errs = append(errs, errors.New("base labor and influence must be non-negative"))
	}
	if r.MaxInvestments < 1 {
		errs = append(errs, errors.New("maxInvestments must be at least 1"))
	}
	if r.ConversionRate < 1 {
		errs = append(errs, errors.New("conversionRate must be at least 1"))
	}
	if r.StartingEconomy.Gold < 0 || r.StartingEconomy.RawMaterials < 0 || r.StartingEconomy.SpecialMaterials < 0 {
		errs = append(errs, errors.New("startingEconomy must be non-negative"))
	}
	for name, table := range map[string]TierTable{
		"officeCost":         r.OfficeCost,
		"officeUpkeep":       r.OfficeUpkeep,
		"officeIncome":       r.OfficeIncome,
		"officeInfluence":    r.OfficeInfluence,
		"organizationCost":   r.OrganizationCost,
		"organizationUpkeep": r.OrganizationUpkeep,
		"organizationLabor":  r.OrganizationLabor,
	} {
		if table.Small < 0 || table.Medium < 0 || table.Large < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative", name))
		}
	}
	for name, rule := range map[string]GatherRule{"domain": r.Domain, "workshop": r.Workshop} {
		y := rule.Yield
		if rule.RawPerInvestment < 0 || y.VeryGood < 0 || y.Good < 0 || y.Success < 0 || y.Poor < 0 || y.Fail < 0 {
			errs = append(errs, fmt.Errorf("%s gather rule must be non-negative", name))
		}
	}
	if r.MaxCampaignNameLength < 1 || r.MaxDisplayNameLength < 1 || r.MaxNoteLength < 1 {
		errs = append(errs, errors.New("length limits must be positive"))
	}
	return errors.Join(errs...)
}

// Parse decodes JSON overrides on top of the default table.
func Parse(data []byte) (Rules, error) {
	r := Default()
	if err := json.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("validate rules: %w", err)
	}
	return r, nil
}
