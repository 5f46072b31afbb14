package campaign

import (
	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/services/game/domain/command"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/phase"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
)

func decideAdvance(state State, c command.AdvancePhase, actor event.Actor, r rules.Rules) ([]event.Event, error) {
	if !actor.IsGM() || actor.UserID == "" {
		return nil, reject(apperrors.CodeRoleForbidden, "only the gm may advance the phase")
	}
	if !state.Created {
		return nil, reject(apperrors.CodeCampaignNotFound, "campaign does not exist")
	}
	if !isCampaignGM(state, actor) {
		return nil, reject(apperrors.CodeRoleForbidden, "only the campaign gm may advance the phase")
	}
	if c.ExpectedPhase != "" && c.ExpectedPhase != state.Phase {
		return nil, apperrors.WithMetadata(apperrors.CodePhaseMismatch, "campaign is not in the expected phase", map[string]string{
			"expected": c.ExpectedPhase.String(),
			"actual":   state.Phase.String(),
		})
	}

	next, round := phase.Transition(state.Phase, state.Round)
	events := []event.Event{
		event.New(event.Public(), event.PhaseAdvanced{From: state.Phase, To: next, Round: round}),
	}
	switch next {
	case phase.Action:
		events = append(events, grantBudgets(state, r)...)
	case phase.Conversion:
		events = append(events, settleConversions(state, r)...)
	case phase.Reset:
		events = append(events, event.New(event.Public(), event.RoundReset{Round: state.Round}))
	case phase.Maintenance:
		events = append(events, runMaintenance(state, r)...)
	}
	return events, nil
}

// grantBudgets sets each player's labor and influence for the action phase.
// Organizations in unrest contribute no labor.
func grantBudgets(state State, r rules.Rules) []event.Event {
	var events []event.Event
	for _, player := range state.OrderedPlayers() {
		labor := r.BaseLabor
		for _, org := range player.Holdings.Organizations {
			if !org.Followers.InUnrest {
				labor += r.OrganizationLabor.For(org.Tier)
			}
		}
		influence := r.BaseInfluence
		for _, office := range player.Holdings.Offices {
			influence += r.OfficeInfluence.For(office.Tier)
		}
		events = append(events, event.New(event.Private(player.ID), event.TurnBudgetGranted{
			PlayerID:  player.ID,
			Labor:     labor,
			Influence: influence,
		}))
	}
	return events
}

// settleConversions refines queued raw materials in whole multiples of the
// conversion rate.
func settleConversions(state State, r rules.Rules) []event.Event {
	var events []event.Event
	for _, player := range state.OrderedPlayers() {
		pending := min(player.Turn.PendingConversion, player.Economy.RawMaterials)
		gained := pending / r.ConversionRate
		if gained <= 0 {
			continue
		}
		events = append(events, event.New(event.Private(player.ID), event.MaterialsConverted{
			PlayerID:      player.ID,
			RawSpent:      gained * r.ConversionRate,
			SpecialGained: gained,
		}))
	}
	return events
}

// runMaintenance collects office income and then charges upkeep: offices
// first, then organizations in founding order. Gold never goes negative.
func runMaintenance(state State, r rules.Rules) []event.Event {
	var events []event.Event
	for _, player := range state.OrderedPlayers() {
		holdings := player.Holdings
		if len(holdings.Offices) == 0 && len(holdings.Organizations) == 0 {
			continue
		}

		income := 0
		officeUpkeep := 0
		for _, office := range holdings.Offices {
			income += r.OfficeIncome.For(office.Tier)
			officeUpkeep += r.OfficeUpkeep.For(office.Tier)
		}
		if income > 0 {
			events = append(events, event.New(event.Private(player.ID), event.IncomeCollected{
				PlayerID: player.ID,
				Gold:     income,
			}))
		}

		gold := player.Economy.Gold + income
		paid := min(gold, officeUpkeep)
		gold -= paid

		var unrest, calmed []string
		for _, org := range holdings.Organizations {
			cost := r.OrganizationUpkeep.For(org.Tier)
			if gold >= cost {
				gold -= cost
				paid += cost
				if org.Followers.InUnrest {
					calmed = append(calmed, org.ID)
				}
				continue
			}
			if !org.Followers.InUnrest {
				unrest = append(unrest, org.ID)
			}
		}
		events = append(events, event.New(event.Private(player.ID), event.UpkeepCharged{
			PlayerID: player.ID,
			Gold:     paid,
			Unrest:   unrest,
			Calmed:   calmed,
		}))
	}
	return events
}
