package campaign

import (
	"fmt"
	"strings"

	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/services/game/domain/command"
	"github.com/bkniffler/myranor/internal/services/game/domain/core/dice"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/phase"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
)

// Canonical action keys. Each may be used once per round.
const (
	ActionGather            = "gather"
	ActionAcquireOffice     = "acquire.office"
	ActionFoundOrganization = "found.organization"
)

const bonusPrefix = "bonus."

// BonusKey names the bonus slot an organization grants for action.
func BonusKey(action, organizationID string) string {
	return bonusPrefix + action + "." + organizationID
}

// actionPlayer resolves the acting player and requires the action phase.
func actionPlayer(state State, actor event.Actor) (PlayerState, error) {
	if actor.Role != event.RolePlayer || actor.UserID == "" {
		return PlayerState{}, reject(apperrors.CodeRoleForbidden, "command requires a player identity")
	}
	if !state.Created {
		return PlayerState{}, reject(apperrors.CodeCampaignNotFound, "campaign does not exist")
	}
	if state.Phase != phase.Action {
		return PlayerState{}, rejectf(apperrors.CodePhaseNotAction, "actions are only allowed in the action phase, campaign is in %s", state.Phase)
	}
	return actingPlayer(state, actor)
}

func baseActionsUsed(t Turn) int {
	used := t.ActionsUsed
	for _, key := range t.ActionKeysUsed {
		if strings.HasPrefix(key, bonusPrefix) {
			used--
		}
	}
	return used
}

// bonusSlots lists the slots that allow a second use of action. Only gather
// has bonus slots, one per organization whose followers are calm.
func bonusSlots(p PlayerState, action string) []string {
	if action != ActionGather {
		return nil
	}
	var slots []string
	for _, org := range p.Holdings.Organizations {
		if !org.Followers.InUnrest {
			slots = append(slots, BonusKey(action, org.ID))
		}
	}
	return slots
}

// claimAction returns the key this use of action consumes. A fresh action
// draws on the base budget; a repeated one needs an unused bonus slot.
func claimAction(p PlayerState, action string, r rules.Rules) (string, error) {
	if !p.Turn.hasKey(action) {
		if baseActionsUsed(p.Turn) >= r.BaseActionsPerRound {
			return "", rejectf(apperrors.CodeActionBudgetExhausted, "all %d actions for this round are used", r.BaseActionsPerRound)
		}
		return action, nil
	}
	for _, slot := range bonusSlots(p, action) {
		if !p.Turn.hasKey(slot) {
			return slot, nil
		}
	}
	return "", rejectf(apperrors.CodeActionAlreadyUsed, "action %s was already used this round", action)
}

func decideGather(state State, c command.GatherMaterials, opts Options, r rules.Rules) ([]event.Event, error) {
	player, err := actionPlayer(state, opts.Actor)
	if err != nil {
		return nil, err
	}
	mode := rules.GatherMode(strings.TrimSpace(c.Mode))
	rule, ok := r.Gather(mode)
	if !ok {
		return nil, rejectf(apperrors.CodeGatherModeInvalid, "gather mode %q is not supported", c.Mode)
	}
	if c.Investments < 1 || c.Investments > r.MaxInvestments {
		return nil, rejectf(apperrors.CodeInvestmentsInvalid, "investments must be between 1 and %d", r.MaxInvestments)
	}
	key, err := claimAction(player, ActionGather, r)
	if err != nil {
		return nil, err
	}
	if player.Turn.LaborAvailable < c.Investments {
		return nil, apperrors.WithMetadata(apperrors.CodeInsufficientLabor, "not enough labor for the investment", map[string]string{
			"available": fmt.Sprint(player.Turn.LaborAvailable),
			"required":  fmt.Sprint(c.Investments),
		})
	}
	rawCost := c.Investments * rule.RawPerInvestment
	if player.freeRawMaterials() < rawCost {
		return nil, apperrors.WithMetadata(apperrors.CodeInsufficientMaterials, "not enough raw materials", map[string]string{
			"available": fmt.Sprint(player.freeRawMaterials()),
			"required":  fmt.Sprint(rawCost),
		})
	}
	if opts.RNG == nil {
		return nil, ErrRNGRequired
	}

	roll := dice.Roll(opts.RNG, dice.D20, len(player.Holdings.Offices))
	tier := r.Bands.Resolve(rule.DC, roll.Total)
	yield := c.Investments * rule.Yield.For(tier)

	gathered := event.MaterialsGathered{
		PlayerID:    player.ID,
		ActionKey:   key,
		Mode:        mode,
		Investments: c.Investments,
		Roll:        roll,
		DC:          rule.DC,
		Tier:        tier,
		LaborSpent:  c.Investments,
		RawSpent:    rawCost,
	}
	if rule.ProducesSpecial {
		gathered.SpecialGained = yield
	} else {
		gathered.RawGained = yield
	}
	return []event.Event{event.New(event.Private(player.ID), gathered)}, nil
}

func decideAcquireOffice(state State, c command.AcquireOffice, actor event.Actor, r rules.Rules) ([]event.Event, error) {
	player, err := actionPlayer(state, actor)
	if err != nil {
		return nil, err
	}
	tier, err := rules.ParseTier(strings.TrimSpace(c.Tier))
	if err != nil {
		return nil, reject(apperrors.CodeHoldingTierInvalid, err.Error())
	}
	key, err := claimAction(player, ActionAcquireOffice, r)
	if err != nil {
		return nil, err
	}
	cost := r.OfficeCost.For(tier)
	if player.Economy.Gold < cost {
		return nil, insufficientGold(player.Economy.Gold, cost)
	}
	return []event.Event{
		event.New(event.Private(player.ID), event.OfficeAcquired{
			PlayerID:  player.ID,
			ActionKey: key,
			OfficeID:  fmt.Sprintf("%s-office-%d", player.ID, len(player.Holdings.Offices)+1),
			Tier:      tier,
			GoldSpent: cost,
		}),
	}, nil
}

func decideFoundOrganization(state State, c command.FoundOrganization, actor event.Actor, r rules.Rules) ([]event.Event, error) {
	player, err := actionPlayer(state, actor)
	if err != nil {
		return nil, err
	}
	tier, err := rules.ParseTier(strings.TrimSpace(c.Tier))
	if err != nil {
		return nil, reject(apperrors.CodeHoldingTierInvalid, err.Error())
	}
	key, err := claimAction(player, ActionFoundOrganization, r)
	if err != nil {
		return nil, err
	}
	if player.Turn.InfluenceAvailable < r.OrganizationInfluenceCost {
		return nil, apperrors.WithMetadata(apperrors.CodeInsufficientInfluence, "not enough influence to found an organization", map[string]string{
			"available": fmt.Sprint(player.Turn.InfluenceAvailable),
			"required":  fmt.Sprint(r.OrganizationInfluenceCost),
		})
	}
	cost := r.OrganizationCost.For(tier)
	if player.Economy.Gold < cost {
		return nil, insufficientGold(player.Economy.Gold, cost)
	}
	return []event.Event{
		event.New(event.Private(player.ID), event.OrganizationFounded{
			PlayerID:       player.ID,
			ActionKey:      key,
			OrganizationID: fmt.Sprintf("%s-org-%d", player.ID, len(player.Holdings.Organizations)+1),
			Tier:           tier,
			GoldSpent:      cost,
			InfluenceSpent: r.OrganizationInfluenceCost,
		}),
	}, nil
}

func decideQueueConversion(state State, c command.QueueConversion, actor event.Actor) ([]event.Event, error) {
	player, err := actionPlayer(state, actor)
	if err != nil {
		return nil, err
	}
	if c.RawMaterials < 1 {
		return nil, reject(apperrors.CodeConversionInvalid, "conversion amount must be positive")
	}
	if player.freeRawMaterials() < c.RawMaterials {
		return nil, apperrors.WithMetadata(apperrors.CodeInsufficientMaterials, "not enough unreserved raw materials", map[string]string{
			"available": fmt.Sprint(player.freeRawMaterials()),
			"required":  fmt.Sprint(c.RawMaterials),
		})
	}
	return []event.Event{
		event.New(event.Private(player.ID), event.ConversionQueued{PlayerID: player.ID, RawMaterials: c.RawMaterials}),
	}, nil
}

func insufficientGold(available, required int) error {
	return apperrors.WithMetadata(apperrors.CodeInsufficientGold, "not enough gold", map[string]string{
		"available": fmt.Sprint(available),
		"required":  fmt.Sprint(required),
	})
}
