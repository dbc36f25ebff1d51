package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrjoshuak/go-pixelcore/cmd/pixctl/cmd"
	"github.com/mrjoshuak/go-pixelcore/internal/logging"
)

// GitSHA is stamped by the build.
var GitSHA = "NA"

func main() {
	ctx, cnc := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cnc()
	slog.SetDefault(logging.Logger(os.Stderr, false, slog.LevelInfo))
	if err := cmd.NewRoot(ctx, GitSHA).Execute(); err != nil {
		os.Exit(1)
	}
}
