package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bkniffler/myranor/internal/services/game/storage"
	"github.com/bkniffler/myranor/internal/services/game/storage/storagetest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return openTestStore(t)
	})
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestReopenKeepsLog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "game.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.AppendEvents(ctx, "camp-1", 0, storagetest.Batch(0, storagetest.CampaignEvents("camp-1")...)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	events, err := reopened.ReadEvents(ctx, "camp-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("events = %d, want 5", len(events))
	}
}

func TestDeleteSnapshot(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.PutSnapshot(ctx, storage.Snapshot{CampaignID: "camp-1", Seq: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.DeleteSnapshot(ctx, "camp-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetSnapshot(ctx, "camp-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClosedStoreIsNilSafe(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if _, err := store.ReadEvents(context.Background(), "camp-1"); err == nil {
		t.Fatal("expected error from unconfigured store")
	}
}
