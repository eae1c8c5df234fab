package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ore/internal/amqp"
	"ore/internal/cli"
	"ore/internal/log"
	"ore/internal/reports"
	"ore/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting ore-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	service := reports.NewService(repo)
	recomputeWorker := worker.NewRecomputeWorker(service, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		handler := func(msg *amqp.MonthRecomputeMessage) error {
			return recomputeWorker.HandleRecomputeMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeRecompute(ctx, handler); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
			cancel()
		}
	}()

	// Periodic recompute of the current month catches changes that never
	// produced a message, like manual config edits in the database.
	ticker := time.NewTicker(cfg.RecomputeInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now()
				msg := amqp.NewMonthRecomputeMessage(now.Year(), int(now.Month()), "periodic")
				if err := recomputeWorker.HandleRecomputeMessage(ctx, msg); err != nil {
					logger.Error("Periodic recompute failed", log.FieldError, err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()
	logger.Info("Worker stopped")
}
