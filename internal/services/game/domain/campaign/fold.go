package campaign

import (
	"errors"
	"fmt"

	"github.com/bkniffler/myranor/internal/services/game/domain/event"
)

var (
	// ErrUnhandledEvent indicates a payload the reducer has no case for.
	ErrUnhandledEvent = errors.New("event is not handled by the campaign reducer")
	// ErrUnknownPlayer indicates an event for a player that never joined.
	ErrUnknownPlayer = errors.New("event references an unknown player")
)

// ReduceEvents folds events onto state in order. The input state is not modified.
func ReduceEvents(state State, events []event.Event) (State, error) {
	out := state.Clone()
	for i, evt := range events {
		var err error
		out, err = apply(out, evt)
		if err != nil {
			return State{}, fmt.Errorf("reduce event %d (%s): %w", i, evt.Type(), err)
		}
	}
	return out, nil
}

// Apply folds one event onto a copy of state.
func Apply(state State, evt event.Event) (State, error) {
	return apply(state.Clone(), evt)
}

// apply mutates s, which must already be a private copy.
func apply(s State, evt event.Event) (State, error) {
	switch p := evt.Payload.(type) {
	case event.CampaignCreated:
		return State{
			Created:          true,
			ID:               p.CampaignID,
			Name:             p.Name,
			GMUserID:         p.GMUserID,
			Round:            p.Round,
			Phase:            p.Phase,
			Players:          map[string]PlayerState{},
			PlayerOrder:      []string{},
			PlayerIDByUserID: map[string]string{},
		}, nil

	case event.PlayerJoined:
		if s.Players == nil {
			s.Players = map[string]PlayerState{}
		}
		if s.PlayerIDByUserID == nil {
			s.PlayerIDByUserID = map[string]string{}
		}
		turn := newTurn()
		turn.LaborAvailable = p.Labor
		turn.InfluenceAvailable = p.Influence
		s.Players[p.PlayerID] = PlayerState{
			ID:          p.PlayerID,
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Economy:     p.Economy,
			Turn:        turn,
			Holdings:    newHoldings(),
		}
		s.PlayerOrder = append(s.PlayerOrder, p.PlayerID)
		s.PlayerIDByUserID[p.UserID] = p.PlayerID
		return s, nil

	case event.PhaseAdvanced:
		s.Phase = p.To
		s.Round = p.Round
		return s, nil

	case event.TurnBudgetGranted:
		return updatePlayer(s, p.PlayerID, func(player *PlayerState) {
			player.Turn.LaborAvailable = p.Labor
			player.Turn.InfluenceAvailable = p.Influence
		})

	case event.MaterialsGathered:
		return updatePlayer(s, p.PlayerID, func(player *PlayerState) {
			useAction(player, p.ActionKey)
			player.Turn.LaborAvailable -= p.LaborSpent
			player.Economy.RawMaterials += p.RawGained - p.RawSpent
			player.Economy.SpecialMaterials += p.SpecialGained
		})

	case event.OfficeAcquired:
		return updatePlayer(s, p.PlayerID, func(player *PlayerState) {
			useAction(player, p.ActionKey)
			player.Economy.Gold -= p.GoldSpent
			player.Holdings.Offices = append(player.Holdings.Offices, Office{ID: p.OfficeID, Tier: p.Tier})
		})

	case event.OrganizationFounded:
		return updatePlayer(s, p.PlayerID, func(player *PlayerState) {
			useAction(player, p.ActionKey)
			player.Economy.Gold -= p.GoldSpent
			player.Turn.InfluenceAvailable -= p.InfluenceSpent
			player.Holdings.Organizations = append(player.Holdings.Organizations, Organization{ID: p.OrganizationID, Tier: p.Tier})
		})

	case event.ConversionQueued:
		return updatePlayer(s, p.PlayerID, func(player *PlayerState) {
			player.Turn.PendingConversion += p.RawMaterials
		})

	case event.MaterialsConverted:
		return updatePlayer(s, p.PlayerID, func(player *PlayerState) {
			player.Economy.RawMaterials -= p.RawSpent
			player.Economy.SpecialMaterials += p.SpecialGained
			player.Turn.PendingConversion = 0
		})

	case event.RoundReset:
		for id, player := range s.Players {
			player.Turn = newTurn()
			s.Players[id] = player
		}
		return s, nil

	case event.IncomeCollected:
		return updatePlayer(s, p.PlayerID, func(player *PlayerState) {
			player.Economy.Gold += p.Gold
		})

	case event.UpkeepCharged:
		return updatePlayer(s, p.PlayerID, func(player *PlayerState) {
			player.Economy.Gold -= p.Gold
			setUnrest(player.Holdings.Organizations, p.Unrest, true)
			setUnrest(player.Holdings.Organizations, p.Calmed, false)
		})

	case event.NoteAdded:
		// Notes live only in the history.
		if _, ok := s.Players[p.PlayerID]; !ok {
			return State{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, p.PlayerID)
		}
		return s, nil

	default:
		return State{}, fmt.Errorf("%w: %T", ErrUnhandledEvent, evt.Payload)
	}
}

func updatePlayer(s State, playerID string, update func(*PlayerState)) (State, error) {
	player, ok := s.Players[playerID]
	if !ok {
		return State{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	update(&player)
	s.Players[playerID] = player
	return s, nil
}

func useAction(player *PlayerState, key string) {
	player.Turn.ActionsUsed++
	player.Turn.ActionKeysUsed = player.Turn.withKey(key)
}

func setUnrest(orgs []Organization, ids []string, inUnrest bool) {
	for _, id := range ids {
		for i := range orgs {
			if orgs[i].ID == id {
				orgs[i].Followers.InUnrest = inUnrest
			}
		}
	}
}
