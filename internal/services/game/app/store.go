package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bkniffler/myranor/internal/services/game/storage"
	"github.com/bkniffler/myranor/internal/services/game/storage/file"
	"github.com/bkniffler/myranor/internal/services/game/storage/memory"
	"github.com/bkniffler/myranor/internal/services/game/storage/sqlite"
)

// StorageKind selects a campaign store backend.
type StorageKind string

const (
	StorageFile   StorageKind = "file"
	StorageSQLite StorageKind = "sqlite"
	StorageMemory StorageKind = "memory"
)

const (
	defaultDataDir    = "data"
	campaignsDirName  = "campaigns"
	sqliteDefaultName = "myranor.db"
)

// ParseStorageKind normalizes a backend name. Empty selects the file store.
func ParseStorageKind(raw string) (StorageKind, error) {
	switch kind := StorageKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case "":
		return StorageFile, nil
	case StorageFile, StorageSQLite, StorageMemory:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown storage %q (want file, sqlite or memory)", raw)
	}
}

// openStore opens the backend selected by opts.
func openStore(opts Options) (storage.Store, error) {
	kind, err := ParseStorageKind(string(opts.Storage))
	if err != nil {
		return nil, err
	}
	dataDir := strings.TrimSpace(opts.DataDir)
	if dataDir == "" {
		dataDir = defaultDataDir
	}

	switch kind {
	case StorageMemory:
		return memory.New(), nil
	case StorageSQLite:
		path := strings.TrimSpace(opts.SQLitePath)
		if path == "" {
			path = filepath.Join(dataDir, sqliteDefaultName)
		}
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		store, err := file.Open(filepath.Join(dataDir, campaignsDirName))
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil
	}
}

// ensureDir creates the parent directory for a database file.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// storeHealth checks backends that can report their own health. The others
// are healthy while the process runs.
func storeHealth(store storage.Store) func(context.Context) error {
	return func(ctx context.Context) error {
		if p, ok := store.(pinger); ok {
			return p.Ping(ctx)
		}
		return nil
	}
}
