package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contas/internal/amqp"
	"contas/internal/cli"
	"contas/internal/log"
	"contas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(log.ComponentWorker)

	logger.Info("Starting contas-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	snap, err := cli.OpenSnapshot(cfg)
	if err != nil {
		logger.Error("Failed to open snapshot store", log.FieldError, err, "path", cfg.SnapshotDBPath)
		os.Exit(1)
	}
	defer snap.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := cli.OpenRemote(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize remote store", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(snap, store)

	done := make(chan error, 1)
	go func() {
		done <- amqpClient.Consume(ctx, syncWorker.HandleChange)
	}()

	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := syncWorker.Resync(ctx); err != nil {
					logger.Warn("Periodic resync failed", log.FieldError, err)
				}
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", "signal", sig.String())
		cancel()
		<-done
	case err := <-done:
		if err != nil && err != context.Canceled {
			logger.Error("Consumer stopped", log.FieldError, err)
			os.Exit(1)
		}
	}

	logger.Info("contas-worker stopped")
}
