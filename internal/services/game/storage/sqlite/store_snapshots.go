package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bkniffler/myranor/internal/services/game/storage"
)

// PutSnapshot replaces the campaign snapshot.
func (s *Store) PutSnapshot(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := storage.ValidateCampaignID(snapshot.CampaignID); err != nil {
		return err
	}
	stateJSON, err := json.Marshal(snapshot.State)
	if err != nil {
		return fmt.Errorf("encode snapshot state: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO snapshots (campaign_id, seq, state_json, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(campaign_id) DO UPDATE SET
    seq = excluded.seq,
    state_json = excluded.state_json,
    updated_at = excluded.updated_at`,
		snapshot.CampaignID,
		int64(snapshot.Seq),
		string(stateJSON),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves the campaign snapshot.
func (s *Store) GetSnapshot(ctx context.Context, campaignID string) (storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Snapshot{}, err
	}
	if err := storage.ValidateCampaignID(campaignID); err != nil {
		return storage.Snapshot{}, err
	}

	var (
		seq       int64
		stateJSON string
	)
	err := s.sqlDB.QueryRowContext(ctx, `SELECT seq, state_json FROM snapshots WHERE campaign_id = ?`, campaignID).Scan(&seq, &stateJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Snapshot{}, storage.ErrNotFound
		}
		return storage.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	snap := storage.Snapshot{CampaignID: campaignID, Seq: uint64(seq)}
	if err := json.Unmarshal([]byte(stateJSON), &snap.State); err != nil {
		return storage.Snapshot{}, fmt.Errorf("decode snapshot state: %w", err)
	}
	return snap, nil
}

// DeleteSnapshot drops the campaign snapshot so the next load replays the log.
func (s *Store) DeleteSnapshot(ctx context.Context, campaignID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM snapshots WHERE campaign_id = ?`, campaignID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
