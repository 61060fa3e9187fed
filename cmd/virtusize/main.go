// Package main is the entry point for the virtusize command line client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/virtusize/virtusize-go/internal/config"
	"github.com/virtusize/virtusize-go/internal/logging"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(logging.Options{
		Level:   cfg.LogLevel,
		DevMode: cfg.DevMode,
		Service: "virtusize",
		Version: version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Str("commit", commit).Str("build_date", buildDate).Msg("starting virtusize")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "virtusize: %v\n", err)
		stop()
		os.Exit(1)
	}
}
