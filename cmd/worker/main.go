package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hszk-dev/vidvault/internal/config"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/infrastructure/queue"
	"github.com/hszk-dev/vidvault/internal/infrastructure/storage"
	"github.com/hszk-dev/vidvault/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("minio: %w", err)
	}

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("rabbitmq: %w", err)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("failed to close RabbitMQ client", slog.String("error", err.Error()))
		}
	}()
	logger.Info("worker dependencies ready", slog.String("bucket", cfg.MinIO.Bucket))

	svc := usecase.NewCleanupService(storageClient, usecase.CleanupServiceConfig{
		MaxRetries: cfg.Worker.MaxRetries,
	})

	var inFlight sync.WaitGroup
	consumeErr := make(chan error, 1)
	go func() {
		logger.Info("consuming asset cleanup tasks", slog.Int("max_retries", cfg.Worker.MaxRetries))
		consumeErr <- queueClient.ConsumeCleanupTasks(ctx, cleanupHandler(ctx, logger, svc, &inFlight))
	}()

	select {
	case err := <-consumeErr:
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("consumer error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown requested")
	}
	stop()

	if !drain(&inFlight, cfg.Worker.ShutdownTimeout) {
		logger.Warn("shutdown timeout exceeded with cleanup tasks still running",
			slog.Duration("timeout", cfg.Worker.ShutdownTimeout))
	}

	logger.Info("worker stopped")
	return nil
}

// cleanupHandler runs each task on a context detached from ctx so that
// deletions already started are not aborted by shutdown.
func cleanupHandler(ctx context.Context, logger *slog.Logger, svc usecase.CleanupService, inFlight *sync.WaitGroup) func(repository.AssetCleanupTask) error {
	taskCtx := context.WithoutCancel(ctx)

	return func(task repository.AssetCleanupTask) error {
		inFlight.Add(1)
		defer inFlight.Done()

		log := logger.With(
			slog.String("video_id", task.VideoID.String()),
			slog.String("reason", task.Reason),
			slog.Int("keys", len(task.Keys)),
			slog.Int("retry_count", task.RetryCount),
		)

		start := time.Now()
		if err := svc.ProcessTask(taskCtx, task); err != nil {
			log.Error("cleanup task failed", slog.String("error", err.Error()))
			return err
		}
		log.Info("cleanup task completed", slog.Duration("duration", time.Since(start)))
		return nil
	}
}

// drain waits for wg up to timeout and reports whether it finished.
func drain(wg *sync.WaitGroup, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
