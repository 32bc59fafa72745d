// Package main is the entry point for dungeongrammar.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeongrammar/internal/cli"
	"github.com/samdwyer/dungeongrammar/internal/config"
	"github.com/samdwyer/dungeongrammar/internal/logging"
	"github.com/samdwyer/dungeongrammar/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	log, err := logging.New(false)
	if err != nil {
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	// Load .env file for local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn(".env file not loaded", zap.Error(err))
	}

	env, err := config.ParseEnv()
	if err != nil {
		log.Error("invalid environment", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, env.TelemetrySettings(cli.Version))
	if err != nil {
		// Generation still works without tracing.
		log.Warn("telemetry setup failed", zap.Error(err))
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("telemetry shutdown", zap.Error(err))
			}
		}()
	}

	if err := cli.Execute(ctx, env, os.Args[1:]); err != nil {
		return 1
	}
	return 0
}
