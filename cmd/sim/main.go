// Package main plays an offline seeded campaign and prints its history as
// newline-delimited JSON.
package main

import (
	"flag"
	"os"

	simcmd "github.com/bkniffler/myranor/internal/cmd/sim"
	entrypoint "github.com/bkniffler/myranor/internal/platform/cmd"
)

func main() {
	ctx, stop := entrypoint.Start(entrypoint.ServiceSim)
	defer stop()

	cfg, err := simcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		entrypoint.Fatal(entrypoint.ServiceSim, "parse config", err)
	}
	if err := simcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		stop()
		entrypoint.Fatal(entrypoint.ServiceSim, "simulate", err)
	}
}
