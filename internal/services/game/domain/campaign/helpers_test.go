package campaign

import (
	"testing"

	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/services/game/domain/command"
	"github.com/bkniffler/myranor/internal/services/game/domain/core/random"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
)

const testCampaignID = "camp-1"

var (
	gm    = event.Actor{UserID: "gm-1", Role: event.RoleGM}
	alice = event.Actor{UserID: "user-alice", Role: event.RolePlayer}
	bob   = event.Actor{UserID: "user-bob", Role: event.RolePlayer}
)

func target() command.Target {
	return command.Target{CampaignID: testCampaignID}
}

// run decides cmd and folds the result, failing the test on rejection.
func run(t *testing.T, state State, actor event.Actor, cmd command.Command, rng random.Provider) (State, []event.Event) {
	t.Helper()
	events, err := Decide(state, cmd, Options{Actor: actor, RNG: rng})
	if err != nil {
		t.Fatalf("decide %s: %v", cmd.CommandType(), err)
	}
	next, err := ReduceEvents(state, events)
	if err != nil {
		t.Fatalf("reduce %s: %v", cmd.CommandType(), err)
	}
	return next, events
}

// expectRejected asserts cmd fails with code and yields no events.
func expectRejected(t *testing.T, state State, actor event.Actor, cmd command.Command, code apperrors.Code) {
	t.Helper()
	events, err := Decide(state, cmd, Options{Actor: actor, RNG: random.NewScripted(10)})
	if err == nil {
		t.Fatalf("decide %s: expected %s, got %d events", cmd.CommandType(), code, len(events))
	}
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("decide %s: code = %s, want %s (err %v)", cmd.CommandType(), got, code, err)
	}
	if len(events) != 0 {
		t.Fatalf("decide %s: events = %d, want 0", cmd.CommandType(), len(events))
	}
}

// playtest creates "Playtest" with Alice and Bob joined, still in maintenance.
func playtest(t *testing.T) State {
	t.Helper()
	state, _ := run(t, State{}, gm, command.CreateCampaign{Target: target(), Name: "Playtest"}, nil)
	state, _ = run(t, state, alice, command.JoinCampaign{Target: target(), DisplayName: "Alice"}, nil)
	state, _ = run(t, state, bob, command.JoinCampaign{Target: target(), DisplayName: "Bob"}, nil)
	return state
}

func advance(t *testing.T, state State) (State, []event.Event) {
	t.Helper()
	return run(t, state, gm, command.AdvancePhase{Target: target()}, nil)
}

func player(t *testing.T, state State, actor event.Actor) PlayerState {
	t.Helper()
	p, ok := state.PlayerByUser(actor.UserID)
	if !ok {
		t.Fatalf("user %s has not joined", actor.UserID)
	}
	return p
}

// withPlayer returns a copy of state with the player behind actor edited.
func withPlayer(t *testing.T, state State, actor event.Actor, edit func(*PlayerState)) State {
	t.Helper()
	out := state.Clone()
	p := player(t, out, actor)
	edit(&p)
	out.Players[p.ID] = p
	return out
}

func eventTypes(events []event.Event) []event.Type {
	out := make([]event.Type, 0, len(events))
	for _, evt := range events {
		out = append(out, evt.Type())
	}
	return out
}
