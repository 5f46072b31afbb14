package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/services/game/domain/campaign"
	"github.com/bkniffler/myranor/internal/services/game/domain/command"
	"github.com/bkniffler/myranor/internal/services/game/domain/core/random"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
	"github.com/bkniffler/myranor/internal/services/game/storage"
	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/bkniffler/myranor/internal/services/game/engine"

	// DefaultMaxAttempts bounds load-decide-append cycles per command.
	DefaultMaxAttempts = 3
)

var (
	// ErrRepositoryRequired indicates a service without storage.
	ErrRepositoryRequired = errors.New("repository is required")
	// ErrRulesRequired indicates a service without a rules source.
	ErrRulesRequired = errors.New("rules source is required")
	// ErrCommandRequired indicates a nil command.
	ErrCommandRequired = errors.New("command is required")
)

// Repository is the storage surface the engine drives.
type Repository interface {
	Load(ctx context.Context, campaignID string) (storage.Loaded, error)
	Append(ctx context.Context, campaignID string, expectedSeq uint64, actor event.Actor, events []event.Event) ([]event.Stored, error)
}

// RulesSource supplies the rules each command is decided under.
type RulesSource interface {
	Rules() (rules.Rules, error)
}

// StaticRules serves a fixed rule set.
type StaticRules rules.Rules

// Rules returns the wrapped rules.
func (s StaticRules) Rules() (rules.Rules, error) {
	return rules.Rules(s), nil
}

// Config wires a Service.
type Config struct {
	Repository Repository
	Rules      RulesSource
	// RNG returns the provider for one decision. Defaults to crypto randomness.
	RNG func() random.Provider
	// Serialize runs commands for the same campaign one at a time in this
	// process. Seq checks still guard writers in other processes.
	Serialize bool
	// MaxAttempts bounds retries after sequence conflicts.
	MaxAttempts int
	// Backoff builds the wait policy between attempts.
	Backoff func() backoff.BackOff
}

// Result is the outcome of an accepted command.
type Result struct {
	Seq    uint64         `json:"seq"`
	Events []event.Stored `json:"events"`
	State  campaign.State `json:"-"`
}

// Service runs commands against campaigns: load, decide, append.
type Service struct {
	repo        Repository
	rules       RulesSource
	rng         func() random.Provider
	serialize   bool
	maxAttempts int
	backoff     func() backoff.BackOff
	locks       *campaignLocks
	tracer      trace.Tracer
}

// New validates cfg and builds a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Repository == nil {
		return nil, ErrRepositoryRequired
	}
	if cfg.Rules == nil {
		return nil, ErrRulesRequired
	}
	s := &Service{
		repo:        cfg.Repository,
		rules:       cfg.Rules,
		rng:         cfg.RNG,
		serialize:   cfg.Serialize,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		locks:       newCampaignLocks(),
		tracer:      otel.Tracer(tracerName),
	}
	if s.rng == nil {
		s.rng = func() random.Provider { return random.NewCrypto() }
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = DefaultMaxAttempts
	}
	if s.backoff == nil {
		s.backoff = defaultBackoff
	}
	return s, nil
}

func defaultBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	return b
}

// Execute decides cmd against the latest state and appends the resulting
// events. Sequence conflicts are retried from a fresh load; rule rejections
// and storage failures are returned as is.
func (s *Service) Execute(ctx context.Context, actor event.Actor, cmd command.Command) (Result, error) {
	if cmd == nil {
		return Result{}, ErrCommandRequired
	}
	campaignID := cmd.Campaign()
	ctx, span := s.tracer.Start(ctx, "engine.Execute", trace.WithAttributes(
		attribute.String("campaign.id", campaignID),
		attribute.String("command.type", string(cmd.CommandType())),
		attribute.String("actor.role", string(actor.Role)),
	))
	defer span.End()

	result, err := s.execute(ctx, actor, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(
		attribute.Int64("campaign.seq", int64(result.Seq)),
		attribute.Int("events.count", len(result.Events)),
	)
	return result, nil
}

func (s *Service) execute(ctx context.Context, actor event.Actor, cmd command.Command) (Result, error) {
	campaignID := cmd.Campaign()
	if err := storage.ValidateCampaignID(campaignID); err != nil {
		return Result{}, err
	}
	r, err := s.rules.Rules()
	if err != nil {
		return Result{}, fmt.Errorf("load rules: %w", err)
	}
	if s.serialize {
		release, err := s.locks.acquire(ctx, campaignID)
		if err != nil {
			return Result{}, err
		}
		defer release()
	}

	attempt := 0
	op := func() (Result, error) {
		attempt++
		result, err := s.attempt(ctx, actor, cmd, &r)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, storage.ErrSeqMismatch) {
			trace.SpanFromContext(ctx).AddEvent("sequence conflict", trace.WithAttributes(attribute.Int("attempt", attempt)))
			return Result{}, err
		}
		return Result{}, backoff.Permanent(err)
	}
	result, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(s.backoff()),
		backoff.WithMaxTries(uint(s.maxAttempts)),
	)
	// The last attempt returns its error still marked permanent.
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return result, err
}

// attempt runs one load-decide-append cycle.
func (s *Service) attempt(ctx context.Context, actor event.Actor, cmd command.Command, r *rules.Rules) (Result, error) {
	campaignID := cmd.Campaign()
	loaded, err := s.repo.Load(ctx, campaignID)
	if err != nil {
		return Result{}, err
	}
	events, err := campaign.Decide(loaded.State, cmd, campaign.Options{Actor: actor, RNG: s.rng(), Rules: r})
	if err != nil {
		return Result{}, err
	}
	next, err := campaign.ReduceEvents(loaded.State, events)
	if err != nil {
		return Result{}, fmt.Errorf("reduce decided events: %w", err)
	}
	stored, err := s.repo.Append(ctx, campaignID, loaded.Seq, actor, events)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Seq:    loaded.Seq + uint64(len(stored)),
		Events: stored,
		State:  next,
	}, nil
}

// load returns the current campaign, rejecting campaigns never created.
func (s *Service) load(ctx context.Context, campaignID string) (storage.Loaded, error) {
	loaded, err := s.repo.Load(ctx, campaignID)
	if err != nil {
		return storage.Loaded{}, err
	}
	if !loaded.State.Created {
		return storage.Loaded{}, apperrors.New(apperrors.CodeCampaignNotFound, fmt.Sprintf("campaign %s does not exist", campaignID))
	}
	return loaded, nil
}

// PublicState returns the view every participant may read.
func (s *Service) PublicState(ctx context.Context, campaignID string) (campaign.PublicCampaign, error) {
	loaded, err := s.load(ctx, campaignID)
	if err != nil {
		return campaign.PublicCampaign{}, err
	}
	return campaign.PublicView(loaded.State), nil
}

// PrivateState returns the full state for the GM or the caller's own view.
func (s *Service) PrivateState(ctx context.Context, actor event.Actor, campaignID string) (any, error) {
	loaded, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return campaign.PrivateView(loaded.State, actor)
}

// History returns the events with seq >= from that actor may read in scope.
// The private scope requires the campaign GM or a joined player.
func (s *Service) History(ctx context.Context, actor event.Actor, campaignID string, from uint64, scope campaign.HistoryScope) ([]event.Stored, error) {
	loaded, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if scope == campaign.HistoryPrivate {
		if _, err := campaign.PrivateView(loaded.State, actor); err != nil {
			return nil, err
		}
	}
	return campaign.FilterEvents(loaded.State, actor, loaded.Events, from, scope), nil
}
