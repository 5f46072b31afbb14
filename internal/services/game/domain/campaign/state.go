package campaign

import (
	"slices"

	"github.com/bkniffler/myranor/internal/services/game/domain/phase"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
)

// State is the replayed campaign aggregate. The zero value is a campaign that
// has not been created.
type State struct {
	Created          bool                   `json:"created"`
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	GMUserID         string                 `json:"gmUserId"`
	Round            int                    `json:"round"`
	Phase            phase.Phase            `json:"phase"`
	Players          map[string]PlayerState `json:"players"`
	PlayerOrder      []string               `json:"playerOrder"`
	PlayerIDByUserID map[string]string      `json:"playerIdByUserId"`
}

// PlayerState is one player's economy, turn budget, and holdings.
type PlayerState struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	DisplayName string        `json:"displayName"`
	Economy     rules.Economy `json:"economy"`
	Turn        Turn          `json:"turn"`
	Holdings    Holdings      `json:"holdings"`
}

// Turn is the per-round budget. RoundReset clears it.
type Turn struct {
	ActionsUsed int `json:"actionsUsed"`
	// ActionKeysUsed is a sorted set of action and bonus slot keys.
	ActionKeysUsed     []string `json:"actionKeysUsed"`
	LaborAvailable     int      `json:"laborAvailable"`
	InfluenceAvailable int      `json:"influenceAvailable"`
	// PendingConversion is raw material reserved for the conversion phase.
	PendingConversion int `json:"pendingConversion"`
}

// Holdings are never nil so snapshots and replays compare equal.
type Holdings struct {
	Offices       []Office       `json:"offices"`
	Organizations []Organization `json:"organizations"`
}

type Office struct {
	ID   string     `json:"id"`
	Tier rules.Tier `json:"tier"`
}

type Organization struct {
	ID        string     `json:"id"`
	Tier      rules.Tier `json:"tier"`
	Followers Followers  `json:"followers"`
}

type Followers struct {
	InUnrest bool `json:"inUnrest"`
}

func newTurn() Turn {
	return Turn{ActionKeysUsed: []string{}}
}

func newHoldings() Holdings {
	return Holdings{Offices: []Office{}, Organizations: []Organization{}}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Players = cloneMap(s.Players, PlayerState.Clone)
	out.PlayerOrder = cloneSlice(s.PlayerOrder)
	out.PlayerIDByUserID = cloneMap(s.PlayerIDByUserID, func(v string) string { return v })
	return out
}

// Clone returns a deep copy of the player.
func (p PlayerState) Clone() PlayerState {
	out := p
	out.Turn.ActionKeysUsed = cloneSlice(p.Turn.ActionKeysUsed)
	out.Holdings.Offices = cloneSlice(p.Holdings.Offices)
	out.Holdings.Organizations = cloneSlice(p.Holdings.Organizations)
	return out
}

// cloneSlice keeps nil as nil and empty as empty.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

func cloneMap[V any](in map[string]V, clone func(V) V) map[string]V {
	if in == nil {
		return nil
	}
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = clone(v)
	}
	return out
}

// PlayerByUser resolves the player joined by userID.
func (s State) PlayerByUser(userID string) (PlayerState, bool) {
	playerID, ok := s.PlayerIDByUserID[userID]
	if !ok {
		return PlayerState{}, false
	}
	player, ok := s.Players[playerID]
	return player, ok
}

// OrderedPlayers returns players in join order.
func (s State) OrderedPlayers() []PlayerState {
	out := make([]PlayerState, 0, len(s.PlayerOrder))
	for _, id := range s.PlayerOrder {
		if player, ok := s.Players[id]; ok {
			out = append(out, player)
		}
	}
	return out
}

func (t Turn) hasKey(key string) bool {
	_, found := slices.BinarySearch(t.ActionKeysUsed, key)
	return found
}

func (t Turn) withKey(key string) []string {
	keys := cloneSlice(t.ActionKeysUsed)
	if keys == nil {
		keys = []string{}
	}
	idx, found := slices.BinarySearch(keys, key)
	if found {
		return keys
	}
	return slices.Insert(keys, idx, key)
}

// freeRawMaterials is raw material not already reserved for conversion.
func (p PlayerState) freeRawMaterials() int {
	return p.Economy.RawMaterials - p.Turn.PendingConversion
}
