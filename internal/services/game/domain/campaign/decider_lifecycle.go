package campaign

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/services/game/domain/command"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/phase"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
)

func decideCreate(state State, c command.CreateCampaign, actor event.Actor, r rules.Rules) ([]event.Event, error) {
	if !actor.IsGM() || actor.UserID == "" {
		return nil, reject(apperrors.CodeRoleForbidden, "only a gm may create a campaign")
	}
	if state.Created {
		return nil, reject(apperrors.CodeCampaignAlreadyExists, "campaign already exists")
	}
	name := normalizeText(c.Name)
	if name == "" {
		return nil, reject(apperrors.CodeCampaignNameEmpty, "campaign name is required")
	}
	if utf8.RuneCountInString(name) > r.MaxCampaignNameLength {
		return nil, rejectf(apperrors.CodeCampaignNameTooLong, "campaign name exceeds %d characters", r.MaxCampaignNameLength)
	}
	return []event.Event{
		event.New(event.Public(), event.CampaignCreated{
			CampaignID: c.CampaignID,
			Name:       name,
			GMUserID:   actor.UserID,
			Round:      phase.FirstRound,
			Phase:      phase.Initial,
		}),
	}, nil
}

func decideJoin(state State, c command.JoinCampaign, actor event.Actor, r rules.Rules) ([]event.Event, error) {
	if actor.Role != event.RolePlayer || actor.UserID == "" {
		return nil, reject(apperrors.CodeRoleForbidden, "only a player may join a campaign")
	}
	if !state.Created {
		return nil, reject(apperrors.CodeCampaignNotFound, "campaign does not exist")
	}
	if _, joined := state.PlayerIDByUserID[actor.UserID]; joined {
		return nil, reject(apperrors.CodePlayerAlreadyJoined, "user already joined the campaign")
	}
	name := normalizeText(c.DisplayName)
	if name == "" {
		return nil, reject(apperrors.CodePlayerDisplayNameEmpty, "display name is required")
	}
	if utf8.RuneCountInString(name) > r.MaxDisplayNameLength {
		return nil, rejectf(apperrors.CodePlayerDisplayNameTooLong, "display name exceeds %d characters", r.MaxDisplayNameLength)
	}
	for _, other := range state.Players {
		if strings.EqualFold(other.DisplayName, name) {
			return nil, apperrors.WithMetadata(apperrors.CodePlayerDisplayNameTaken, "display name is already taken", map[string]string{
				"displayName": name,
			})
		}
	}

	joined := event.PlayerJoined{
		PlayerID:    fmt.Sprintf("player-%d", len(state.PlayerOrder)+1),
		UserID:      actor.UserID,
		DisplayName: name,
		Economy:     r.StartingEconomy,
	}
	if state.Phase == phase.Action {
		joined.Labor = r.BaseLabor
		joined.Influence = r.BaseInfluence
	}
	return []event.Event{event.New(event.Public(), joined)}, nil
}

func decideAddNote(state State, c command.AddPrivateNote, actor event.Actor, r rules.Rules) ([]event.Event, error) {
	player, err := actingPlayer(state, actor)
	if err != nil {
		return nil, err
	}
	text := normalizeText(c.Text)
	if text == "" {
		return nil, reject(apperrors.CodeNoteEmpty, "note text is required")
	}
	if utf8.RuneCountInString(text) > r.MaxNoteLength {
		return nil, rejectf(apperrors.CodeNoteTooLong, "note exceeds %d characters", r.MaxNoteLength)
	}
	return []event.Event{
		event.New(event.Private(player.ID), event.NoteAdded{PlayerID: player.ID, Text: text}),
	}, nil
}
