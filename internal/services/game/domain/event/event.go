package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type identifies an event payload.
type Type string

const (
	TypeCampaignCreated     Type = "campaign.created"
	TypePlayerJoined        Type = "player.joined"
	TypePhaseAdvanced       Type = "phase.advanced"
	TypeUpkeepCharged       Type = "upkeep.charged"
	TypeIncomeCollected     Type = "income.collected"
	TypeTurnBudgetGranted   Type = "turn.budget_granted"
	TypeMaterialsGathered   Type = "materials.gathered"
	TypeOfficeAcquired      Type = "office.acquired"
	TypeOrganizationFounded Type = "organization.founded"
	TypeConversionQueued    Type = "conversion.queued"
	TypeMaterialsConverted  Type = "materials.converted"
	TypeRoundReset          Type = "round.reset"
	TypeNoteAdded           Type = "note.added"
)

var (
	// ErrTypeUnknown indicates an event type with no registered payload.
	ErrTypeUnknown = errors.New("event type is not registered")
	// ErrPayloadRequired indicates an event with no payload.
	ErrPayloadRequired = errors.New("event payload is required")
	// ErrVisibilityInvalid indicates a malformed visibility.
	ErrVisibilityInvalid = errors.New("event visibility is invalid")
)

// Payload is implemented by every event variant in this package.
type Payload interface {
	EventType() Type
	isPayload()
}

// Event is a payload with the audience allowed to see it.
type Event struct {
	Visibility Visibility
	Payload    Payload
}

// New builds an event.
func New(visibility Visibility, payload Payload) Event {
	return Event{Visibility: visibility, Payload: payload}
}

// Type returns the payload type, or "" when the payload is missing.
func (e Event) Type() Type {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.EventType()
}

type eventJSON struct {
	Type       Type            `json:"type"`
	Visibility Visibility      `json:"visibility"`
	Payload    json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the event as {type, visibility, payload}.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, ErrPayloadRequired
	}
	if err := e.Visibility.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", e.Payload.EventType(), err)
	}
	return json.Marshal(eventJSON{Type: e.Payload.EventType(), Visibility: e.Visibility, Payload: payload})
}

// UnmarshalJSON decodes an event, rejecting unregistered types.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	factory, ok := registry[raw.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrTypeUnknown, raw.Type)
	}
	if err := raw.Visibility.Validate(); err != nil {
		return err
	}
	if len(raw.Payload) == 0 || string(raw.Payload) == "null" {
		return fmt.Errorf("%s: %w", raw.Type, ErrPayloadRequired)
	}
	payload, err := factory(raw.Payload)
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", raw.Type, err)
	}
	e.Visibility = raw.Visibility
	e.Payload = payload
	return nil
}
