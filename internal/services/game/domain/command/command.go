package command

import (
	"github.com/bkniffler/myranor/internal/services/game/domain/phase"
)

// Type identifies a command variant.
type Type string

const (
	TypeCreateCampaign    Type = "CreateCampaign"
	TypeJoinCampaign      Type = "JoinCampaign"
	TypeAdvancePhase      Type = "AdvancePhase"
	TypeGatherMaterials   Type = "GatherMaterials"
	TypeAcquireOffice     Type = "AcquireOffice"
	TypeFoundOrganization Type = "FoundOrganization"
	TypeQueueConversion   Type = "QueueConversion"
	TypeAddPrivateNote    Type = "AddPrivateNote"
)

// Command is implemented by every variant in this package.
type Command interface {
	CommandType() Type
	Campaign() string
	isCommand()
}

// Target names the campaign a command addresses.
type Target struct {
	CampaignID string `json:"campaignId"`
}

// Campaign returns the target campaign id.
func (t Target) Campaign() string { return t.CampaignID }

func (Target) isCommand() {}

type CreateCampaign struct {
	Target
	Name string `json:"name"`
}

type JoinCampaign struct {
	Target
	DisplayName string `json:"displayName"`
}

// AdvancePhase moves the campaign one phase forward. When ExpectedPhase is
// set the command only applies if the campaign is still in that phase.
type AdvancePhase struct {
	Target
	ExpectedPhase phase.Phase `json:"expectedPhase,omitempty"`
}

// GatherMaterials spends labor on a domain or workshop gather roll.
type GatherMaterials struct {
	Target
	Mode        string `json:"mode"`
	Investments int    `json:"investments"`
}

type AcquireOffice struct {
	Target
	Tier string `json:"tier"`
}

type FoundOrganization struct {
	Target
	Tier string `json:"tier"`
}

// QueueConversion reserves raw materials for refinement in the conversion phase.
type QueueConversion struct {
	Target
	RawMaterials int `json:"rawMaterials"`
}

type AddPrivateNote struct {
	Target
	Text string `json:"text"`
}

func (CreateCampaign) CommandType() Type    { return TypeCreateCampaign }
func (JoinCampaign) CommandType() Type      { return TypeJoinCampaign }
func (AdvancePhase) CommandType() Type      { return TypeAdvancePhase }
func (GatherMaterials) CommandType() Type   { return TypeGatherMaterials }
func (AcquireOffice) CommandType() Type     { return TypeAcquireOffice }
func (FoundOrganization) CommandType() Type { return TypeFoundOrganization }
func (QueueConversion) CommandType() Type   { return TypeQueueConversion }
func (AddPrivateNote) CommandType() Type    { return TypeAddPrivateNote }
