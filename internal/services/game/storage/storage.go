package storage

import (
	"context"
	"fmt"
	"regexp"

	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/services/game/domain/campaign"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrSeqMismatch indicates the log moved since the caller loaded it. The
// append was rejected as a whole; reload and decide again.
var ErrSeqMismatch = apperrors.New(apperrors.CodeSequenceConflict, "campaign log changed since it was loaded")

// ErrCampaignIDInvalid indicates a campaign id unsafe for storage keys.
var ErrCampaignIDInvalid = apperrors.New(apperrors.CodeCampaignIDInvalid, "campaign id must be 1-64 letters, digits, '-' or '_'")

var campaignIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateCampaignID rejects ids that cannot name a log. The file backend
// uses ids as directory names.
func ValidateCampaignID(campaignID string) error {
	if !campaignIDPattern.MatchString(campaignID) {
		return fmt.Errorf("%w: %q", ErrCampaignIDInvalid, campaignID)
	}
	return nil
}

// EventLog is the append-only, per-campaign source of truth.
type EventLog interface {
	// ReadEvents returns every event of the campaign ordered by seq. A
	// campaign with no log returns an empty slice.
	ReadEvents(ctx context.Context, campaignID string) ([]event.Stored, error)
	// AppendEvents writes events whose seqs continue expectedSeq. If the
	// current tail is not expectedSeq nothing is written and ErrSeqMismatch
	// is returned.
	AppendEvents(ctx context.Context, campaignID string, expectedSeq uint64, events []event.Stored) error
}

// Snapshot is the campaign state folded through Seq. It is derived data and
// may be deleted at any time.
type Snapshot struct {
	CampaignID string         `json:"campaignId"`
	Seq        uint64         `json:"seq"`
	State      campaign.State `json:"state"`
}

// SnapshotStore caches the latest snapshot per campaign.
type SnapshotStore interface {
	// GetSnapshot returns ErrNotFound when no snapshot exists.
	GetSnapshot(ctx context.Context, campaignID string) (Snapshot, error)
	PutSnapshot(ctx context.Context, snapshot Snapshot) error
}

// Store is a backend providing both halves.
type Store interface {
	EventLog
	SnapshotStore
	Close() error
}

// CheckAppend validates a batch against the tail the backend observed.
// Backends call it while holding whatever makes check-and-write atomic.
func CheckAppend(campaignID string, tail, expectedSeq uint64, events []event.Stored) error {
	if tail != expectedSeq {
		return fmt.Errorf("%w: campaign %s is at seq %d, expected %d", ErrSeqMismatch, campaignID, tail, expectedSeq)
	}
	for i, stored := range events {
		if want := expectedSeq + uint64(i) + 1; stored.Seq != want {
			return fmt.Errorf("append %s: event %d has seq %d, want %d", campaignID, i, stored.Seq, want)
		}
	}
	return nil
}
