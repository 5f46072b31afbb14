package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/platform/id"
	"github.com/bkniffler/myranor/internal/services/game/domain/campaign"
	"github.com/bkniffler/myranor/internal/services/game/domain/command"
	"github.com/bkniffler/myranor/internal/services/game/domain/core/random"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/phase"
	"github.com/bkniffler/myranor/internal/services/game/engine"
	"github.com/bkniffler/myranor/internal/services/game/storage"
	"github.com/bkniffler/myranor/internal/services/game/storage/memory"
)

const campaignID = "sim"

// Params describes one simulated campaign.
type Params struct {
	Seed    int64
	Rounds  int
	Players int
	Rules   engine.RulesSource
	// Start is the timestamp of the first event; zero uses the Unix epoch so
	// equal seeds print equal histories.
	Start time.Time
}

// Report is the outcome of a simulation.
type Report struct {
	Seed     int64
	Events   []event.Stored
	State    campaign.State
	Rejected int
}

type simulation struct {
	svc      *engine.Service
	gm       event.Actor
	players  []event.Actor
	state    campaign.State
	rejected int
}

// Simulate plays Rounds full rounds with a fixed policy: every player tries
// to gather, grow holdings and convert spare raw materials each action phase.
// Rule rejections are counted and skipped.
func Simulate(ctx context.Context, p Params) (Report, error) {
	if p.Rounds < 1 {
		return Report{}, errors.New("rounds must be at least 1")
	}
	if p.Players < 1 {
		return Report{}, errors.New("players must be at least 1")
	}
	if p.Rules == nil {
		return Report{}, engine.ErrRulesRequired
	}

	store := memory.New()
	repo, err := storage.NewRepository(store, store,
		storage.WithIDGenerator(id.Sequence("evt")),
		storage.WithClock(steppingClock(p.Start)),
	)
	if err != nil {
		return Report{}, err
	}
	rng := random.NewSeeded(p.Seed)
	svc, err := engine.New(engine.Config{
		Repository:  repo,
		Rules:       p.Rules,
		RNG:         func() random.Provider { return rng },
		MaxAttempts: 1,
	})
	if err != nil {
		return Report{}, err
	}

	s := &simulation{
		svc: svc,
		gm:  event.Actor{UserID: "sim-gm", Role: event.RoleGM},
	}
	for i := 1; i <= p.Players; i++ {
		s.players = append(s.players, event.Actor{UserID: fmt.Sprintf("sim-player-%d", i), Role: event.RolePlayer})
	}

	if err := s.setup(ctx); err != nil {
		return Report{}, err
	}
	for round := 0; round < p.Rounds; round++ {
		if err := s.playRound(ctx); err != nil {
			return Report{}, err
		}
	}

	events, err := repo.ListEvents(ctx, campaignID, 1)
	if err != nil {
		return Report{}, err
	}
	return Report{Seed: p.Seed, Events: events, State: s.state, Rejected: s.rejected}, nil
}

func (s *simulation) setup(ctx context.Context) error {
	if err := s.must(ctx, s.gm, command.CreateCampaign{Target: target(), Name: "Simulation"}); err != nil {
		return err
	}
	for i, player := range s.players {
		join := command.JoinCampaign{Target: target(), DisplayName: fmt.Sprintf("Player %d", i+1)}
		if err := s.must(ctx, player, join); err != nil {
			return err
		}
	}
	return nil
}

// playRound advances through every phase once, taking turns in the action
// phase.
func (s *simulation) playRound(ctx context.Context) error {
	for range phase.All() {
		if err := s.must(ctx, s.gm, command.AdvancePhase{Target: target(), ExpectedPhase: s.state.Phase}); err != nil {
			return err
		}
		if s.state.Phase != phase.Action {
			continue
		}
		for _, player := range s.players {
			if err := s.takeTurn(ctx, player); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *simulation) takeTurn(ctx context.Context, player event.Actor) error {
	for _, cmd := range []command.Command{
		command.GatherMaterials{Target: target(), Mode: "domain", Investments: 1},
		command.AcquireOffice{Target: target(), Tier: "small"},
		command.FoundOrganization{Target: target(), Tier: "small"},
		command.GatherMaterials{Target: target(), Mode: "workshop", Investments: 1},
		command.QueueConversion{Target: target(), RawMaterials: 2},
	} {
		if err := s.try(ctx, player, cmd); err != nil {
			return err
		}
	}
	return nil
}

// try runs cmd and counts rule rejections instead of failing. Storage and
// concurrency errors still abort the run.
func (s *simulation) try(ctx context.Context, actor event.Actor, cmd command.Command) error {
	err := s.must(ctx, actor, cmd)
	if appErr, ok := apperrors.As(err); ok && appErr.Code.Rejection() {
		s.rejected++
		return nil
	}
	return err
}

func (s *simulation) must(ctx context.Context, actor event.Actor, cmd command.Command) error {
	result, err := s.svc.Execute(ctx, actor, cmd)
	if err != nil {
		return fmt.Errorf("%s by %s: %w", cmd.CommandType(), actor.UserID, err)
	}
	s.state = result.State
	return nil
}

func target() command.Target {
	return command.Target{CampaignID: campaignID}
}

// steppingClock returns a clock that moves one second per call.
func steppingClock(start time.Time) func() time.Time {
	if start.IsZero() {
		start = time.Unix(0, 0)
	}
	next := start.UTC()
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}
