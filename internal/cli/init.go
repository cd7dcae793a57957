// Package cli consolidates the initialization shared by cmd/contas and
// cmd/contas-worker: env loading, logging, config, and wiring of the
// snapshot store, remote backend and orchestrator.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"contas/internal/amqp"
	"contas/internal/config"
	"contas/internal/log"
	"contas/internal/remote"
	"contas/internal/remote/google"
	"contas/internal/remote/memory"
	"contas/internal/series"
	"contas/internal/services"
	"contas/internal/snapshot"
)

// SetupLogger initializes structured logging with default settings and
// installs it as the process default.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting
// the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenSnapshot opens the SQLite snapshot store at the configured path.
func OpenSnapshot(cfg *config.Config) (*snapshot.SQLiteStore, error) {
	store, err := snapshot.NewSQLiteStore(cfg.SnapshotDBPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return store, nil
}

// OpenRemote selects the configured remote backend.
func OpenRemote(ctx context.Context, cfg *config.Config) (remote.Store, error) {
	switch cfg.RemoteBackend {
	case "sheets":
		client, err := google.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets backend: %w", err)
		}
		return client, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported remote backend: %s", cfg.RemoteBackend)
	}
}

// BuildOrchestrator wires snapshot, remote store and optional AMQP
// dispatch into a started orchestrator. The returned cleanup closes
// whatever was opened.
func BuildOrchestrator(ctx context.Context, logger *log.Logger, cfg *config.Config) (*services.Orchestrator, func(), error) {
	snap, err := OpenSnapshot(cfg)
	if err != nil {
		return nil, nil, err
	}

	store, err := OpenRemote(ctx, cfg)
	if err != nil {
		snap.Close()
		return nil, nil, err
	}

	var dispatcher services.RemoteDispatcher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, dispatching directly", log.FieldError, err)
		} else {
			dispatcher = amqpClient
			logger.Info("Dispatching mutations through AMQP",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	orch, err := services.New(services.Options{
		Remote:     store,
		Dispatcher: dispatcher,
		Snapshot:   snap,
		Calendar:   series.YearCalendar(cfg.BaseYear),
		ExtraGroup: cfg.ExtraGroup,
	})
	if err != nil {
		snap.Close()
		return nil, nil, err
	}
	if err := orch.Start(ctx); err != nil {
		snap.Close()
		return nil, nil, fmt.Errorf("start orchestrator: %w", err)
	}

	cleanup := func() {
		orch.Flush()
		if amqpClient != nil {
			amqpClient.Close()
		}
		snap.Close()
	}
	return orch, cleanup, nil
}
