// Package file stores campaign logs as newline-delimited JSON.
//
// Each campaign gets a directory under the root holding events.ndjson, which
// is only ever appended to, and snapshot.json, which is replaced atomically.
// A trailing line without a newline is a torn write from a crash; it is
// ignored on read and cut off before the next append.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/storage"
)

const (
	eventsFile   = "events.ndjson"
	snapshotFile = "snapshot.json"
)

// Store is a file-backed campaign store. Appends to one campaign are
// serialized in-process so the tail check and the write happen together.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open prepares root for campaign directories.
func Open(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: filepath.Clean(root), locks: make(map[string]*sync.Mutex)}, nil
}

// Close is a no-op; files are opened per call.
func (s *Store) Close() error {
	return nil
}

func (s *Store) lock(campaignID string) func() {
	s.mu.Lock()
	l, ok := s.locks[campaignID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[campaignID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *Store) dir(campaignID string) string {
	return filepath.Join(s.root, campaignID)
}

// ReadEvents parses every complete line of the campaign log.
func (s *Store) ReadEvents(ctx context.Context, campaignID string) ([]event.Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := storage.ValidateCampaignID(campaignID); err != nil {
		return nil, err
	}
	unlock := s.lock(campaignID)
	defer unlock()

	data, err := os.ReadFile(filepath.Join(s.dir(campaignID), eventsFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []event.Stored{}, nil
		}
		return nil, fmt.Errorf("read event log: %w", err)
	}
	events, _, err := parseLog(data)
	return events, err
}

// AppendEvents writes the batch with a single write followed by fsync.
func (s *Store) AppendEvents(ctx context.Context, campaignID string, expectedSeq uint64, events []event.Stored) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateCampaignID(campaignID); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, stored := range events {
		line, err := event.MarshalLine(stored)
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	unlock := s.lock(campaignID)
	defer unlock()

	if err := os.MkdirAll(s.dir(campaignID), 0o755); err != nil {
		return fmt.Errorf("create campaign dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.dir(campaignID), eventsFile), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read event log: %w", err)
	}
	existing, validEnd, err := parseLog(data)
	if err != nil {
		return err
	}
	tail := uint64(0)
	if n := len(existing); n > 0 {
		tail = existing[n-1].Seq
	}
	if err := storage.CheckAppend(campaignID, tail, expectedSeq, events); err != nil {
		return err
	}

	if validEnd < int64(len(data)) {
		if err := f.Truncate(validEnd); err != nil {
			return fmt.Errorf("truncate torn line: %w", err)
		}
	}
	if _, err := f.WriteAt(buf.Bytes(), validEnd); err != nil {
		return fmt.Errorf("append event log: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync event log: %w", err)
	}
	return nil
}

// parseLog decodes newline-terminated lines and reports the offset just past
// the last one.
func parseLog(data []byte) ([]event.Stored, int64, error) {
	events := []event.Stored{}
	offset := 0
	for lineNo := 1; ; lineNo++ {
		end := bytes.IndexByte(data[offset:], '\n')
		if end < 0 {
			break
		}
		line := data[offset : offset+end]
		offset += end + 1
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		stored, err := event.ParseLine(line)
		if err != nil {
			return nil, 0, fmt.Errorf("event log line %d: %w", lineNo, err)
		}
		events = append(events, stored)
	}
	return events, int64(offset), nil
}

// GetSnapshot reads snapshot.json.
func (s *Store) GetSnapshot(ctx context.Context, campaignID string) (storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, err
	}
	if err := storage.ValidateCampaignID(campaignID); err != nil {
		return storage.Snapshot{}, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir(campaignID), snapshotFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.Snapshot{}, storage.ErrNotFound
		}
		return storage.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap storage.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return storage.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.CampaignID = campaignID
	return snap, nil
}

// PutSnapshot writes a temp file and renames it over snapshot.json.
func (s *Store) PutSnapshot(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateCampaignID(snapshot.CampaignID); err != nil {
		return err
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	dir := s.dir(snapshot.CampaignID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create campaign dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, snapshotFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, snapshotFile)); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
