// Package main provides the entry point for the sdlc CLI.
package main

import (
	"context"
	"os"

	"github.com/orchard9/sdlc/internal/cli"
	sdlcerrors "github.com/orchard9/sdlc/internal/errors"
	"github.com/orchard9/sdlc/internal/signal"
)

// Build information, injected via ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	handler := signal.NewHandler(context.Background())
	defer handler.Stop()
	defer cli.CloseLogFile()

	err := cli.Execute(handler.Context(), cli.BuildInfo{Version: version, Commit: commit, Date: date})
	return sdlcerrors.ExitCode(err)
}
