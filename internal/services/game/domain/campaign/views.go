package campaign

import (
	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/phase"
)

// PublicPlayer is what every participant can see about a player.
type PublicPlayer struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// PublicCampaign is the campaign as any participant sees it.
type PublicCampaign struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Round   int            `json:"round"`
	Phase   phase.Phase    `json:"phase"`
	Players []PublicPlayer `json:"players"`
}

// PlayerView is a player's private view: the public campaign plus their own state.
type PlayerView struct {
	Campaign PublicCampaign `json:"campaign"`
	Me       PlayerState    `json:"me"`
}

// PublicView projects state into its public form with players in join order.
func PublicView(state State) PublicCampaign {
	players := make([]PublicPlayer, 0, len(state.PlayerOrder))
	for _, player := range state.OrderedPlayers() {
		players = append(players, PublicPlayer{ID: player.ID, DisplayName: player.DisplayName})
	}
	return PublicCampaign{
		ID:      state.ID,
		Name:    state.Name,
		Round:   state.Round,
		Phase:   state.Phase,
		Players: players,
	}
}

// PrivateView returns the full state for the campaign GM and a PlayerView for
// a joined player.
func PrivateView(state State, actor event.Actor) (any, error) {
	if !state.Created {
		return nil, reject(apperrors.CodeCampaignNotFound, "campaign does not exist")
	}
	if isCampaignGM(state, actor) {
		return state.Clone(), nil
	}
	if actor.Role != event.RolePlayer {
		return nil, reject(apperrors.CodeRoleForbidden, "private view requires the campaign gm or a player")
	}
	player, ok := state.PlayerByUser(actor.UserID)
	if !ok {
		return nil, rejectf(apperrors.CodePlayerUnknown, "user %s has not joined the campaign", actor.UserID)
	}
	return PlayerView{Campaign: PublicView(state), Me: player.Clone()}, nil
}

// HistoryScope selects which events FilterEvents keeps.
type HistoryScope int

const (
	// HistoryPublic keeps only public events.
	HistoryPublic HistoryScope = iota
	// HistoryPrivate keeps public events plus the actor's own private events.
	// The campaign GM sees everything.
	HistoryPrivate
)

// FilterEvents returns the events with seq >= from that actor may read.
// A from of zero is treated as one.
func FilterEvents(state State, actor event.Actor, events []event.Stored, from uint64, scope HistoryScope) []event.Stored {
	if from == 0 {
		from = 1
	}
	gm := scope == HistoryPrivate && isCampaignGM(state, actor)
	playerID := ""
	if scope == HistoryPrivate && actor.Role == event.RolePlayer {
		playerID = state.PlayerIDByUserID[actor.UserID]
	}

	out := make([]event.Stored, 0, len(events))
	for _, stored := range events {
		if stored.Seq < from {
			continue
		}
		visibility := stored.Event.Visibility
		switch {
		case visibility.IsPublic(), gm:
			out = append(out, stored)
		case playerID != "" && visibility.VisibleTo(playerID):
			out = append(out, stored)
		}
	}
	return out
}
