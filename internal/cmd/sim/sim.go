// Package sim parses simulation flags and prints a seeded campaign history.
package sim

import (
	"context"
	"flag"
	"fmt"
	"io"

	entrypoint "github.com/bkniffler/myranor/internal/platform/cmd"
	internalrandom "github.com/bkniffler/myranor/internal/random"
	"github.com/bkniffler/myranor/internal/services/game/domain/core/random"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
)

// Config holds simulation command configuration.
type Config struct {
	Seed      int64  `env:"MYRANOR_SIM_SEED"`
	Rounds    int    `env:"MYRANOR_SIM_ROUNDS" envDefault:"3"`
	Players   int    `env:"MYRANOR_SIM_PLAYERS" envDefault:"2"`
	RulesPath string `env:"MYRANOR_SIM_RULES_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.Int64Var(&cfg.Seed, "seed", 0, "random seed for reproducibility (0 = random)")
	fs.IntVar(&cfg.Rounds, "rounds", 3, "number of rounds to play")
	fs.IntVar(&cfg.Players, "players", 2, "number of players")
	fs.StringVar(&cfg.RulesPath, "rules", "", "optional JSON rules override file")
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Rounds < 1 {
		return Config{}, fmt.Errorf("rounds must be at least 1, got %d", cfg.Rounds)
	}
	if cfg.Players < 1 {
		return Config{}, fmt.Errorf("players must be at least 1, got %d", cfg.Players)
	}
	return cfg, nil
}

// Run plays the simulation and writes each stored event to out as one JSON
// line. The summary goes to errOut so out stays machine readable.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	var requested *int64
	if cfg.Seed != 0 {
		requested = &cfg.Seed
	}
	seed, source, err := random.ResolveSeed(requested, internalrandom.NewSeed, true)
	if err != nil {
		return err
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSim, func(ctx context.Context) error {
		report, err := Simulate(ctx, Params{
			Seed:    seed,
			Rounds:  cfg.Rounds,
			Players: cfg.Players,
			Rules:   rules.NewCatalog(cfg.RulesPath),
		})
		if err != nil {
			return err
		}
		for _, stored := range report.Events {
			line, err := event.MarshalLine(stored)
			if err != nil {
				return err
			}
			if _, err := out.Write(append(line, '\n')); err != nil {
				return fmt.Errorf("write event %d: %w", stored.Seq, err)
			}
		}
		fmt.Fprintf(errOut, "seed %d (%s): %d events over %d rounds, %d commands rejected\n",
			seed, source, len(report.Events), cfg.Rounds, report.Rejected)
		return nil
	})
}
