package event

import (
	"encoding/json"
	"slices"
)

type payloadFactory func(json.RawMessage) (Payload, error)

func decodeAs[T Payload](data json.RawMessage) (Payload, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

var registry = map[Type]payloadFactory{
	TypeCampaignCreated:     decodeAs[CampaignCreated],
	TypePlayerJoined:        decodeAs[PlayerJoined],
	TypePhaseAdvanced:       decodeAs[PhaseAdvanced],
	TypeUpkeepCharged:       decodeAs[UpkeepCharged],
	TypeIncomeCollected:     decodeAs[IncomeCollected],
	TypeTurnBudgetGranted:   decodeAs[TurnBudgetGranted],
	TypeMaterialsGathered:   decodeAs[MaterialsGathered],
	TypeOfficeAcquired:      decodeAs[OfficeAcquired],
	TypeOrganizationFounded: decodeAs[OrganizationFounded],
	TypeConversionQueued:    decodeAs[ConversionQueued],
	TypeMaterialsConverted:  decodeAs[MaterialsConverted],
	TypeRoundReset:          decodeAs[RoundReset],
	TypeNoteAdded:           decodeAs[NoteAdded],
}

// Types lists every registered event type in sorted order.
func Types() []Type {
	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
