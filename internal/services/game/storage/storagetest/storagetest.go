// Package storagetest holds the behavior every campaign store backend must
// share. Backend tests call Run with a constructor.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/bkniffler/myranor/internal/services/game/domain/campaign"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/phase"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
	"github.com/bkniffler/myranor/internal/services/game/storage"
)

// Factory opens an empty store for one subtest.
type Factory func(t *testing.T) storage.Store

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Batch builds stored events with seqs after expectedSeq.
func Batch(expectedSeq uint64, events ...event.Event) []event.Stored {
	out := make([]event.Stored, 0, len(events))
	for i, evt := range events {
		seq := expectedSeq + uint64(i) + 1
		out = append(out, event.Stored{
			ID:    fmt.Sprintf("evt-%d", seq),
			Seq:   seq,
			TS:    baseTime.Add(time.Duration(seq) * time.Millisecond),
			Actor: event.Actor{UserID: "gm-1", Role: event.RoleGM},
			Event: evt,
		})
	}
	return out
}

// CampaignEvents returns a short history: create, one join, advance to action.
func CampaignEvents(campaignID string) []event.Event {
	return []event.Event{
		event.New(event.Public(), event.CampaignCreated{CampaignID: campaignID, Name: "Playtest", GMUserID: "gm-1", Round: 1, Phase: phase.Maintenance}),
		event.New(event.Public(), event.PlayerJoined{PlayerID: "player-1", UserID: "user-1", DisplayName: "Alice", Economy: rules.Economy{Gold: 20, RawMaterials: 2}}),
		event.New(event.Public(), event.PhaseAdvanced{From: phase.Maintenance, To: phase.Action, Round: 1}),
		event.New(event.Private("player-1"), event.TurnBudgetGranted{PlayerID: "player-1", Labor: 4, Influence: 1}),
		event.New(event.Private("player-1"), event.OrganizationFounded{
			PlayerID: "player-1", ActionKey: campaign.ActionFoundOrganization, OrganizationID: "player-1-org-1",
			Tier: rules.TierSmall, GoldSpent: 6, InfluenceSpent: 1,
		}),
	}
}

// Run exercises a backend.
func Run(t *testing.T, open Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty log", func(t *testing.T) {
		store := open(t)
		events, err := store.ReadEvents(ctx, "camp-empty")
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(events) != 0 {
			t.Fatalf("events = %d, want 0", len(events))
		}
	})

	t.Run("append and read back", func(t *testing.T) {
		store := open(t)
		first := Batch(0, CampaignEvents("camp-1")[:2]...)
		second := Batch(2, CampaignEvents("camp-1")[2:]...)
		if err := store.AppendEvents(ctx, "camp-1", 0, first); err != nil {
			t.Fatalf("append first: %v", err)
		}
		if err := store.AppendEvents(ctx, "camp-1", 2, second); err != nil {
			t.Fatalf("append second: %v", err)
		}
		got, err := store.ReadEvents(ctx, "camp-1")
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		want := append(append([]event.Stored{}, first...), second...)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("events = %+v, want %+v", got, want)
		}
	})

	t.Run("stale expected seq is rejected without writing", func(t *testing.T) {
		store := open(t)
		if err := store.AppendEvents(ctx, "camp-1", 0, Batch(0, CampaignEvents("camp-1")[:2]...)); err != nil {
			t.Fatalf("append: %v", err)
		}
		for _, expected := range []uint64{0, 1, 3} {
			err := store.AppendEvents(ctx, "camp-1", expected, Batch(expected, CampaignEvents("camp-1")[2:]...))
			if !errors.Is(err, storage.ErrSeqMismatch) {
				t.Fatalf("expected seq %d: err = %v, want ErrSeqMismatch", expected, err)
			}
		}
		got, err := store.ReadEvents(ctx, "camp-1")
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("events = %d, want 2", len(got))
		}
	})

	t.Run("misnumbered batch is rejected", func(t *testing.T) {
		store := open(t)
		batch := Batch(0, CampaignEvents("camp-1")[:2]...)
		batch[1].Seq = 5
		if err := store.AppendEvents(ctx, "camp-1", 0, batch); err == nil {
			t.Fatal("expected error for misnumbered batch")
		}
		got, err := store.ReadEvents(ctx, "camp-1")
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("events = %d, want 0", len(got))
		}
	})

	t.Run("campaigns are isolated", func(t *testing.T) {
		store := open(t)
		if err := store.AppendEvents(ctx, "camp-a", 0, Batch(0, CampaignEvents("camp-a")[:1]...)); err != nil {
			t.Fatalf("append a: %v", err)
		}
		if err := store.AppendEvents(ctx, "camp-b", 0, Batch(0, CampaignEvents("camp-b")[:2]...)); err != nil {
			t.Fatalf("append b: %v", err)
		}
		a, _ := store.ReadEvents(ctx, "camp-a")
		b, _ := store.ReadEvents(ctx, "camp-b")
		if len(a) != 1 || len(b) != 2 {
			t.Fatalf("len(a) = %d, len(b) = %d, want 1 and 2", len(a), len(b))
		}
	})

	t.Run("concurrent appends at the same seq", func(t *testing.T) {
		store := open(t)
		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.AppendEvents(ctx, "camp-race", 0, Batch(0, CampaignEvents("camp-race")[:1]...))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, storage.ErrSeqMismatch):
					conflicts++
				default:
					t.Errorf("append: %v", err)
				}
			}()
		}
		wg.Wait()
		if successes != 1 || conflicts != writers-1 {
			t.Fatalf("successes = %d conflicts = %d, want 1 and %d", successes, conflicts, writers-1)
		}
		got, _ := store.ReadEvents(ctx, "camp-race")
		if len(got) != 1 {
			t.Fatalf("events = %d, want 1", len(got))
		}
	})

	t.Run("snapshot round trip", func(t *testing.T) {
		store := open(t)
		if _, err := store.GetSnapshot(ctx, "camp-1"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("missing snapshot err = %v, want ErrNotFound", err)
		}
		state, err := campaign.ReduceEvents(campaign.State{}, CampaignEvents("camp-1"))
		if err != nil {
			t.Fatalf("reduce: %v", err)
		}
		want := storage.Snapshot{CampaignID: "camp-1", Seq: 5, State: state}
		if err := store.PutSnapshot(ctx, want); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := store.GetSnapshot(ctx, "camp-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("snapshot = %+v, want %+v", got, want)
		}

		want.Seq = 6
		if err := store.PutSnapshot(ctx, want); err != nil {
			t.Fatalf("replace: %v", err)
		}
		got, err = store.GetSnapshot(ctx, "camp-1")
		if err != nil {
			t.Fatalf("get replaced: %v", err)
		}
		if got.Seq != 6 {
			t.Fatalf("snapshot seq = %d, want 6", got.Seq)
		}
	})
}
