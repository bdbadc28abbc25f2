package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"photo-wall/internal/adapters/eventbroker/nats"
	"photo-wall/internal/adapters/storage/minio"
	"photo-wall/internal/config"
	"photo-wall/internal/core/service/verify"
	"syscall"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.NATS.URL == "" {
		logger.Error("NATS_URL is required by the verifier")
		os.Exit(1)
	}

	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}
	logger.Info("minio adapter initialized")

	verifyService := verify.NewVerifyService(minioAdapter, logger)

	// Initialize NATS consumer
	natsConsumer, err := nats.NewNATSConsumer(cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to create NATS consumer", "error", err)
		os.Exit(1)
	}
	logger.Info("NATS consumer initialized")

	if err := natsConsumer.Subscribe(ctx, verifyService); err != nil {
		logger.Error("failed to subscribe to NATS", "error", err)
		natsConsumer.Close()
		os.Exit(1)
	}
	logger.Info("NATS subscription active", "stream", cfg.NATS.StreamName, "consumer", cfg.NATS.ConsumerName)

	// Wait for termination signal
	<-ctx.Done()
	logger.Info("gracefully shutting down upload verifier")

	if err := natsConsumer.Close(); err != nil {
		logger.Error("failed to close NATS consumer during shutdown", "error", err)
	}

	logger.Info("upload verifier shutdown complete")
}
