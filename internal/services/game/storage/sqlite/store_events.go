package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/storage"
)

// ReadEvents returns the campaign log ordered by seq.
func (s *Store) ReadEvents(ctx context.Context, campaignID string) ([]event.Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := storage.ValidateCampaignID(campaignID); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, seq, ts, actor_user_id, actor_role, event_json
FROM events
WHERE campaign_id = ?
ORDER BY seq ASC`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []event.Stored{}
	for rows.Next() {
		var (
			stored    event.Stored
			seq       int64
			ts        int64
			role      string
			eventJSON string
		)
		if err := rows.Scan(&stored.ID, &seq, &ts, &stored.Actor.UserID, &role, &eventJSON); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		stored.Seq = uint64(seq)
		stored.TS = fromMillis(ts)
		stored.Actor.Role = event.Role(role)
		if err := json.Unmarshal([]byte(eventJSON), &stored.Event); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", seq, err)
		}
		events = append(events, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// AppendEvents inserts the batch in one transaction after checking the tail.
func (s *Store) AppendEvents(ctx context.Context, campaignID string, expectedSeq uint64, events []event.Stored) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := storage.ValidateCampaignID(campaignID); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var tail int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events WHERE campaign_id = ?`, campaignID).Scan(&tail); err != nil {
		return fmt.Errorf("get event seq: %w", err)
	}
	if err := storage.CheckAppend(campaignID, uint64(tail), expectedSeq, events); err != nil {
		return err
	}

	for _, stored := range events {
		eventJSON, err := json.Marshal(stored.Event)
		if err != nil {
			return fmt.Errorf("encode event %d: %w", stored.Seq, err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO events (campaign_id, seq, id, ts, actor_user_id, actor_role, event_type, event_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			campaignID,
			int64(stored.Seq),
			stored.ID,
			toMillis(stored.TS),
			stored.Actor.UserID,
			string(stored.Actor.Role),
			string(stored.Event.Type()),
			string(eventJSON),
		); err != nil {
			if isConstraintError(err) {
				return fmt.Errorf("%w: seq %d already written: %v", storage.ErrSeqMismatch, stored.Seq, err)
			}
			return fmt.Errorf("append event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
