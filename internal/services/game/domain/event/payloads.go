package event

import (
	"github.com/bkniffler/myranor/internal/services/game/domain/core/check"
	"github.com/bkniffler/myranor/internal/services/game/domain/core/dice"
	"github.com/bkniffler/myranor/internal/services/game/domain/phase"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
)

// CampaignCreated starts a campaign in its initial phase and round.
type CampaignCreated struct {
	CampaignID string      `json:"campaignId"`
	Name       string      `json:"name"`
	GMUserID   string      `json:"gmUserId"`
	Round      int         `json:"round"`
	Phase      phase.Phase `json:"phase"`
}

// PlayerJoined adds a player with the starting economy. Labor and influence
// are nonzero only when the player joins during the action phase.
type PlayerJoined struct {
	PlayerID    string        `json:"playerId"`
	UserID      string        `json:"userId"`
	DisplayName string        `json:"displayName"`
	Economy     rules.Economy `json:"economy"`
	Labor       int           `json:"labor"`
	Influence   int           `json:"influence"`
}

// PhaseAdvanced moves the campaign to the next phase.
type PhaseAdvanced struct {
	From  phase.Phase `json:"from"`
	To    phase.Phase `json:"to"`
	Round int         `json:"round"`
}

// UpkeepCharged pays holding upkeep for one player. Organizations that could
// not be paid enter unrest; paid organizations in unrest calm down.
type UpkeepCharged struct {
	PlayerID string   `json:"playerId"`
	Gold     int      `json:"gold"`
	Unrest   []string `json:"unrestOrganizationIds,omitempty"`
	Calmed   []string `json:"calmedOrganizationIds,omitempty"`
}

// IncomeCollected credits office income for one player.
type IncomeCollected struct {
	PlayerID string `json:"playerId"`
	Gold     int    `json:"gold"`
}

// TurnBudgetGranted sets a player's labor and influence for the round.
type TurnBudgetGranted struct {
	PlayerID  string `json:"playerId"`
	Labor     int    `json:"labor"`
	Influence int    `json:"influence"`
}

// MaterialsGathered records a resolved gather action.
type MaterialsGathered struct {
	PlayerID      string           `json:"playerId"`
	ActionKey     string           `json:"actionKey"`
	Mode          rules.GatherMode `json:"mode"`
	Investments   int              `json:"investments"`
	Roll          dice.Result      `json:"roll"`
	DC            int              `json:"dc"`
	Tier          check.Tier       `json:"tier"`
	LaborSpent    int              `json:"laborSpent"`
	RawSpent      int              `json:"rawSpent"`
	RawGained     int              `json:"rawGained"`
	SpecialGained int              `json:"specialGained"`
}

// OfficeAcquired buys an office.
type OfficeAcquired struct {
	PlayerID  string     `json:"playerId"`
	ActionKey string     `json:"actionKey"`
	OfficeID  string     `json:"officeId"`
	Tier      rules.Tier `json:"tier"`
	GoldSpent int        `json:"goldSpent"`
}

// OrganizationFounded founds an organization.
type OrganizationFounded struct {
	PlayerID       string     `json:"playerId"`
	ActionKey      string     `json:"actionKey"`
	OrganizationID string     `json:"organizationId"`
	Tier           rules.Tier `json:"tier"`
	GoldSpent      int        `json:"goldSpent"`
	InfluenceSpent int        `json:"influenceSpent"`
}

// ConversionQueued reserves raw materials for the conversion phase.
type ConversionQueued struct {
	PlayerID     string `json:"playerId"`
	RawMaterials int    `json:"rawMaterials"`
}

// MaterialsConverted settles a player's queued conversion.
type MaterialsConverted struct {
	PlayerID      string `json:"playerId"`
	RawSpent      int    `json:"rawSpent"`
	SpecialGained int    `json:"specialGained"`
}

// RoundReset clears every player's turn state at the end of a round.
type RoundReset struct {
	Round int `json:"round"`
}

// NoteAdded stores a private note in the history.
type NoteAdded struct {
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
}

func (CampaignCreated) EventType() Type     { return TypeCampaignCreated }
func (PlayerJoined) EventType() Type        { return TypePlayerJoined }
func (PhaseAdvanced) EventType() Type       { return TypePhaseAdvanced }
func (UpkeepCharged) EventType() Type       { return TypeUpkeepCharged }
func (IncomeCollected) EventType() Type     { return TypeIncomeCollected }
func (TurnBudgetGranted) EventType() Type   { return TypeTurnBudgetGranted }
func (MaterialsGathered) EventType() Type   { return TypeMaterialsGathered }
func (OfficeAcquired) EventType() Type      { return TypeOfficeAcquired }
func (OrganizationFounded) EventType() Type { return TypeOrganizationFounded }
func (ConversionQueued) EventType() Type    { return TypeConversionQueued }
func (MaterialsConverted) EventType() Type  { return TypeMaterialsConverted }
func (RoundReset) EventType() Type          { return TypeRoundReset }
func (NoteAdded) EventType() Type           { return TypeNoteAdded }

func (CampaignCreated) isPayload()     {}
func (PlayerJoined) isPayload()        {}
func (PhaseAdvanced) isPayload()       {}
func (UpkeepCharged) isPayload()       {}
func (IncomeCollected) isPayload()     {}
func (TurnBudgetGranted) isPayload()   {}
func (MaterialsGathered) isPayload()   {}
func (OfficeAcquired) isPayload()      {}
func (OrganizationFounded) isPayload() {}
func (ConversionQueued) isPayload()    {}
func (MaterialsConverted) isPayload()  {}
func (RoundReset) isPayload()          {}
func (NoteAdded) isPayload()           {}
