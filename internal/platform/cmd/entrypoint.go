// Package cmd holds startup helpers shared by myranor entrypoints: env then
// flag configuration, signal handling and the tracing lifecycle around a run.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bkniffler/myranor/internal/platform/config"
	"github.com/bkniffler/myranor/internal/platform/otel"
)

const defaultOTelShutdownTimeout = 5 * time.Second

const (
	ServiceGame = "game"
	ServiceSim  = "sim"
)

// RunOptions controls RunWithTelemetryAndOptions.
type RunOptions struct {
	// ShutdownTimeout bounds the final span flush.
	ShutdownTimeout time.Duration
	// Telemetry overrides tracing settings; nil reads them from the environment.
	Telemetry *otel.Settings
}

// LogPrefix is the std log prefix for service, e.g. "[GAME] ".
func LogPrefix(service string) string {
	return "[" + strings.ToUpper(strings.TrimSpace(service)) + "] "
}

// Start sets the log prefix and returns a context cancelled on SIGINT or
// SIGTERM.
func Start(service string) (context.Context, context.CancelFunc) {
	log.SetPrefix(LogPrefix(service))
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Fatal prints err for service and exits non-zero.
func Fatal(service, what string, err error) {
	config.Exitf("%s: %s: %v", service, what, err)
}

// ParseConfig loads environment values into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags. A nil args slice parses nothing.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// ParseConfigFromArgs reads env into cfg, then lets flags already bound to
// cfg's fields override it.
func ParseConfigFromArgs[T any](cfg *T, fs *flag.FlagSet, args []string) error {
	if err := ParseConfig(cfg); err != nil {
		return err
	}
	return ParseArgs(fs, args)
}

// RunWithTelemetry runs service with tracing configured from the environment.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	return RunWithTelemetryAndOptions(ctx, service, RunOptions{}, run)
}

// RunWithTelemetryAndOptions installs the tracer provider, runs service and
// flushes spans on the way out.
func RunWithTelemetryAndOptions(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	settings, err := telemetrySettings(options)
	if err != nil {
		return err
	}
	shutdown, err := otel.Setup(ctx, service, settings)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		timeout := options.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultOTelShutdownTimeout
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}

func telemetrySettings(options RunOptions) (otel.Settings, error) {
	if options.Telemetry != nil {
		return *options.Telemetry, nil
	}
	return otel.SettingsFromEnv()
}
