// Package game parses game command flags and starts the HTTP server.
package game

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/bkniffler/myranor/internal/platform/cmd"
	server "github.com/bkniffler/myranor/internal/services/game/app"
)

// Config holds game command configuration.
type Config struct {
	Addr          string `env:"MYRANOR_GAME_ADDR" envDefault:":8080"`
	Storage       string `env:"MYRANOR_GAME_STORAGE" envDefault:"file"`
	DataDir       string `env:"MYRANOR_GAME_DATA_DIR" envDefault:"data"`
	SQLitePath    string `env:"MYRANOR_GAME_SQLITE_PATH"`
	RulesPath     string `env:"MYRANOR_GAME_RULES_PATH"`
	Serialize     bool   `env:"MYRANOR_GAME_SERIALIZE_COMMANDS" envDefault:"true"`
	RetryAttempts int    `env:"MYRANOR_GAME_RETRY_ATTEMPTS" envDefault:"3"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "Campaign storage backend: file, sqlite or memory")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for campaign files and the default SQLite database")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database path (defaults inside -data-dir)")
	fs.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "Optional JSON rules override file")
	fs.BoolVar(&cfg.Serialize, "serialize", cfg.Serialize, "Run commands for one campaign one at a time")
	fs.IntVar(&cfg.RetryAttempts, "retry-attempts", cfg.RetryAttempts, "Attempts per command after sequence conflicts")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if _, err := server.ParseStorageKind(cfg.Storage); err != nil {
		return Config{}, err
	}
	if cfg.RetryAttempts < 1 {
		return Config{}, fmt.Errorf("retry attempts must be at least 1, got %d", cfg.RetryAttempts)
	}
	return cfg, nil
}

// Options converts the config into server options.
func (c Config) Options() server.Options {
	kind, _ := server.ParseStorageKind(c.Storage)
	return server.Options{
		Addr:          c.Addr,
		Storage:       kind,
		DataDir:       c.DataDir,
		SQLitePath:    c.SQLitePath,
		RulesPath:     c.RulesPath,
		Serialize:     c.Serialize,
		RetryAttempts: c.RetryAttempts,
	}
}

// Run starts the game HTTP service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(ctx context.Context) error {
		return server.Run(ctx, cfg.Options())
	})
}
