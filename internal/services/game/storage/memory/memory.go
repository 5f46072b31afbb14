// Package memory provides an in-process campaign store for tests and
// offline simulation.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/storage"
)

// ErrCampaignIDRequired indicates a missing campaign id.
var ErrCampaignIDRequired = errors.New("campaign id is required")

// Store keeps logs and snapshots in maps guarded by one mutex.
type Store struct {
	mu        sync.Mutex
	logs      map[string][]event.Stored
	snapshots map[string]storage.Snapshot
}

// New creates an empty store.
func New() *Store {
	return &Store{
		logs:      make(map[string][]event.Stored),
		snapshots: make(map[string]storage.Snapshot),
	}
}

// ReadEvents returns a copy of the campaign log.
func (s *Store) ReadEvents(ctx context.Context, campaignID string) ([]event.Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, ErrCampaignIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Stored{}, s.logs[campaignID]...), nil
}

// AppendEvents appends the batch if the tail still matches expectedSeq.
func (s *Store) AppendEvents(ctx context.Context, campaignID string, expectedSeq uint64, events []event.Stored) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return ErrCampaignIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.logs[campaignID]
	if err := storage.CheckAppend(campaignID, uint64(len(current)), expectedSeq, events); err != nil {
		return err
	}
	s.logs[campaignID] = append(current, events...)
	return nil
}

// GetSnapshot returns a deep copy of the stored snapshot.
func (s *Store) GetSnapshot(ctx context.Context, campaignID string) (storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[strings.TrimSpace(campaignID)]
	if !ok {
		return storage.Snapshot{}, storage.ErrNotFound
	}
	snap.State = snap.State.Clone()
	return snap, nil
}

// PutSnapshot replaces the stored snapshot with a deep copy.
func (s *Store) PutSnapshot(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	campaignID := strings.TrimSpace(snapshot.CampaignID)
	if campaignID == "" {
		return ErrCampaignIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.CampaignID = campaignID
	snapshot.State = snapshot.State.Clone()
	s.snapshots[campaignID] = snapshot
	return nil
}

// DeleteSnapshot drops a campaign snapshot. Loads then replay the full log.
func (s *Store) DeleteSnapshot(campaignID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, strings.TrimSpace(campaignID))
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
