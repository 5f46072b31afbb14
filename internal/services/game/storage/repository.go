package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bkniffler/myranor/internal/platform/id"
	"github.com/bkniffler/myranor/internal/services/game/domain/campaign"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/replay"
)

var (
	// ErrEventLogRequired indicates a repository without a log.
	ErrEventLogRequired = errors.New("event log is required")
	// ErrNoEvents indicates an append with nothing to write.
	ErrNoEvents = errors.New("at least one event is required")
)

// Loaded is a campaign as of its latest seq. Seq is zero and State is the
// zero campaign.State when the campaign has never been created.
type Loaded struct {
	Seq    uint64
	State  campaign.State
	Events []event.Stored
}

// Repository loads campaigns through snapshots and appends under an
// expected-seq precondition. It does not serialize concurrent callers.
type Repository struct {
	log       EventLog
	snapshots SnapshotStore
	newID     id.Generator
	now       func() time.Time
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithIDGenerator overrides event id generation.
func WithIDGenerator(gen id.Generator) RepositoryOption {
	return func(r *Repository) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository composes a log with an optional snapshot store. Without
// snapshots every load replays the full log.
func NewRepository(eventLog EventLog, snapshots SnapshotStore, opts ...RepositoryOption) (*Repository, error) {
	if eventLog == nil {
		return nil, ErrEventLogRequired
	}
	r := &Repository{
		log:       eventLog,
		snapshots: snapshots,
		newID:     id.NewID,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Load returns the campaign state folded from its snapshot plus the log tail.
// A missing, stale, or unreadable snapshot falls back to a full replay.
func (r *Repository) Load(ctx context.Context, campaignID string) (Loaded, error) {
	if err := ValidateCampaignID(campaignID); err != nil {
		return Loaded{}, err
	}
	events, err := r.log.ReadEvents(ctx, campaignID)
	if err != nil {
		return Loaded{}, fmt.Errorf("read events %s: %w", campaignID, err)
	}
	if err := replay.CheckContiguous(events); err != nil {
		return Loaded{}, fmt.Errorf("campaign %s log: %w", campaignID, err)
	}
	tail := uint64(len(events))

	base := r.snapshot(ctx, campaignID, tail)
	result, err := replay.Fold(base.State, base.Seq, events, campaign.Apply)
	if err != nil {
		return Loaded{}, fmt.Errorf("replay campaign %s: %w", campaignID, err)
	}
	return Loaded{Seq: result.LastSeq, State: result.State, Events: events}, nil
}

// snapshot returns a usable base for a log ending at tail.
func (r *Repository) snapshot(ctx context.Context, campaignID string, tail uint64) Snapshot {
	empty := Snapshot{CampaignID: campaignID}
	if r.snapshots == nil {
		return empty
	}
	snap, err := r.snapshots.GetSnapshot(ctx, campaignID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("load snapshot %s: %v", campaignID, err)
		}
		return empty
	}
	if snap.Seq > tail {
		log.Printf("snapshot %s at seq %d is ahead of log tail %d, replaying from scratch", campaignID, snap.Seq, tail)
		return empty
	}
	return snap
}

// Append stamps events with ids, seqs after expectedSeq, the actor and a
// timestamp, and writes them as one batch. On success the snapshot is
// refreshed; snapshot failures are logged because the log already holds the
// truth.
func (r *Repository) Append(ctx context.Context, campaignID string, expectedSeq uint64, actor event.Actor, events []event.Event) ([]event.Stored, error) {
	if err := ValidateCampaignID(campaignID); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	ts := r.now().UTC().Truncate(time.Millisecond)
	stored := make([]event.Stored, 0, len(events))
	for i, evt := range events {
		eventID, err := r.newID()
		if err != nil {
			return nil, err
		}
		stored = append(stored, event.Stored{
			ID:    eventID,
			Seq:   expectedSeq + uint64(i) + 1,
			TS:    ts,
			Actor: actor,
			Event: evt,
		})
	}
	if err := r.log.AppendEvents(ctx, campaignID, expectedSeq, stored); err != nil {
		return nil, err
	}
	r.refreshSnapshot(ctx, campaignID)
	return stored, nil
}

func (r *Repository) refreshSnapshot(ctx context.Context, campaignID string) {
	if r.snapshots == nil {
		return
	}
	loaded, err := r.Load(ctx, campaignID)
	if err != nil {
		log.Printf("rebuild snapshot %s: %v", campaignID, err)
		return
	}
	if err := r.snapshots.PutSnapshot(ctx, Snapshot{CampaignID: campaignID, Seq: loaded.Seq, State: loaded.State}); err != nil {
		log.Printf("save snapshot %s at seq %d: %v", campaignID, loaded.Seq, err)
	}
}

// ListEvents returns stored events with seq >= from. A from of zero reads
// from the start.
func (r *Repository) ListEvents(ctx context.Context, campaignID string, from uint64) ([]event.Stored, error) {
	if err := ValidateCampaignID(campaignID); err != nil {
		return nil, err
	}
	events, err := r.log.ReadEvents(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("read events %s: %w", campaignID, err)
	}
	out := make([]event.Stored, 0, len(events))
	for _, stored := range events {
		if stored.Seq >= from {
			out = append(out, stored)
		}
	}
	return out, nil
}
