// Package main starts the campaign HTTP server.
package main

import (
	"flag"
	"os"

	gamecmd "github.com/bkniffler/myranor/internal/cmd/game"
	entrypoint "github.com/bkniffler/myranor/internal/platform/cmd"
)

func main() {
	ctx, stop := entrypoint.Start(entrypoint.ServiceGame)
	defer stop()

	cfg, err := gamecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		entrypoint.Fatal(entrypoint.ServiceGame, "parse config", err)
	}
	if err := gamecmd.Run(ctx, cfg); err != nil {
		stop()
		entrypoint.Fatal(entrypoint.ServiceGame, "serve", err)
	}
}
