package campaign

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/bkniffler/myranor/internal/services/game/domain/command"
	"github.com/bkniffler/myranor/internal/services/game/domain/core/random"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
)

// playthrough records every event of two full rounds for Alice and Bob.
func playthrough(t *testing.T) []event.Event {
	t.Helper()
	var all []event.Event
	step := func(state State, actor event.Actor, cmd command.Command, rng random.Provider) State {
		next, events := run(t, state, actor, cmd, rng)
		all = append(all, events...)
		return next
	}
	rng := random.NewSeeded(42)
	state := step(State{}, gm, command.CreateCampaign{Target: target(), Name: "Playtest"}, nil)
	state = step(state, alice, command.JoinCampaign{Target: target(), DisplayName: "Alice"}, nil)
	state = step(state, bob, command.JoinCampaign{Target: target(), DisplayName: "Bob"}, nil)
	for round := 0; round < 2; round++ {
		state = step(state, gm, command.AdvancePhase{Target: target()}, nil)
		state = step(state, alice, command.GatherMaterials{Target: target(), Mode: "domain", Investments: 2}, rng)
		state = step(state, alice, command.FoundOrganization{Target: target(), Tier: "small"}, nil)
		state = step(state, bob, command.AcquireOffice{Target: target(), Tier: "small"}, nil)
		state = step(state, bob, command.AddPrivateNote{Target: target(), Text: "bought an office"}, nil)
		state = step(state, gm, command.AdvancePhase{Target: target()}, nil)
		state = step(state, gm, command.AdvancePhase{Target: target()}, nil)
		state = step(state, gm, command.AdvancePhase{Target: target()}, nil)
	}
	return all
}

func TestReduceEventsIsDeterministic(t *testing.T) {
	events := playthrough(t)
	first, err := ReduceEvents(State{}, events)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	second, err := ReduceEvents(State{}, events)
	if err != nil {
		t.Fatalf("reduce again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("replaying the same events produced different states")
	}
	if first.Round != 3 || len(player(t, first, alice).Holdings.Organizations) != 2 {
		t.Fatalf("state = %+v", first)
	}
}

func TestReduceEventsSurvivesLineCodec(t *testing.T) {
	events := playthrough(t)
	want, err := ReduceEvents(State{}, events)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}

	decoded := make([]event.Event, 0, len(events))
	for i, evt := range events {
		line, err := event.MarshalLine(event.Stored{
			ID:    "evt",
			Seq:   uint64(i + 1),
			TS:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Actor: gm,
			Event: evt,
		})
		if err != nil {
			t.Fatalf("marshal %d: %v", i, err)
		}
		stored, err := event.ParseLine(line)
		if err != nil {
			t.Fatalf("parse %d: %v", i, err)
		}
		decoded = append(decoded, stored.Event)
	}
	got, err := ReduceEvents(State{}, decoded)
	if err != nil {
		t.Fatalf("reduce decoded: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("state after codec = %+v, want %+v", got, want)
	}
}

func TestReduceEventsMatchesIncrementalApply(t *testing.T) {
	events := playthrough(t)
	want, err := ReduceEvents(State{}, events)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	for split := 0; split <= len(events); split++ {
		head, err := ReduceEvents(State{}, events[:split])
		if err != nil {
			t.Fatalf("reduce head: %v", err)
		}
		state := head
		for _, evt := range events[split:] {
			if state, err = Apply(state, evt); err != nil {
				t.Fatalf("apply: %v", err)
			}
		}
		if !reflect.DeepEqual(state, want) {
			t.Fatalf("split %d: state differs from full replay", split)
		}
	}
}

func TestReduceEventsDoesNotMutateInput(t *testing.T) {
	state := playtest(t)
	before := state.Clone()
	if _, err := ReduceEvents(state, []event.Event{
		event.New(event.Private("player-1"), event.TurnBudgetGranted{PlayerID: "player-1", Labor: 9, Influence: 9}),
	}); err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if !reflect.DeepEqual(state, before) {
		t.Fatal("reduce mutated its input state")
	}
}

func TestReduceEventsRejectsUnknownPlayer(t *testing.T) {
	state := playtest(t)
	_, err := ReduceEvents(state, []event.Event{
		event.New(event.Private("player-9"), event.ConversionQueued{PlayerID: "player-9", RawMaterials: 1}),
	})
	if !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("err = %v, want ErrUnknownPlayer", err)
	}
}

type strayPayload struct{ event.NoteAdded }

func TestApplyRejectsUnhandledPayload(t *testing.T) {
	_, err := Apply(playtest(t), event.Event{Visibility: event.Public(), Payload: strayPayload{}})
	if !errors.Is(err, ErrUnhandledEvent) {
		t.Fatalf("err = %v, want ErrUnhandledEvent", err)
	}
}
