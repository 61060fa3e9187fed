// Package main is the entry point for the fake Virtusize API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/virtusize/virtusize-go/internal/config"
	"github.com/virtusize/virtusize-go/internal/fakeapi"
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

	base, err := logging.Setup(logging.Options{
		Level:   cfg.LogLevel,
		DevMode: cfg.DevMode,
		Service: "virtusize-fakeapi",
		Version: version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v\n", err)
		os.Exit(1)
	}

	logger := base.With().Str("component", "main").Logger()
	logger.Info().Str("version", version).Str("commit", commit).Str("build_date", buildDate).Msg("starting virtusize-fakeapi")

	srv := fakeapi.New(fakeapi.Config{
		APIKey:         cfg.APIKey,
		AoyamaVersion:  os.Getenv("VIRTUSIZE_FAKE_AOYAMA_VERSION"),
		MetricsEnabled: cfg.MetricsEnabled,
	}, version, fakeapi.WithLogger(base))

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case serveErr := <-errCh:
		logger.Error().Err(serveErr).Msg("HTTP server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error().Err(shutdownErr).Msg("HTTP server shutdown error")
	}
	logger.Info().Msg("server stopped gracefully")
}
