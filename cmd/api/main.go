package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/vidvault/internal/api/handler"
	"github.com/hszk-dev/vidvault/internal/config"
	"github.com/hszk-dev/vidvault/internal/infrastructure/cache"
	"github.com/hszk-dev/vidvault/internal/infrastructure/postgres"
	"github.com/hszk-dev/vidvault/internal/infrastructure/queue"
	"github.com/hszk-dev/vidvault/internal/infrastructure/storage"
	"github.com/hszk-dev/vidvault/internal/media"
	"github.com/hszk-dev/vidvault/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Server.UploadTempDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO")

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("failed to close RabbitMQ client", slog.String("error", err.Error()))
		}
	}()
	logger.Info("connected to RabbitMQ")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	prober := media.NewFFprobe(media.FFprobeConfig{FFprobePath: cfg.Media.FFprobePath})
	uploader := storage.NewUploader(storageClient, prober, cfg.MinIO.BaseURL())

	pool := pgClient.Pool()
	videoRepo := postgres.NewVideoRepository(pool)
	playlistRepo := postgres.NewPlaylistRepository(pool)
	likeRepo := postgres.NewLikeRepository(pool)
	channelRepo := postgres.NewChannelRepository(pool)

	playlistCache := cache.NewRedisPlaylistCache(redisClient)
	playlistSvc := usecase.NewCachedPlaylistService(
		usecase.NewPlaylistService(playlistRepo, videoRepo),
		playlistCache,
		usecase.CachedPlaylistServiceConfig{CacheTTL: cfg.Cache.PlaylistTTL},
	)
	videoSvc := usecase.NewVideoService(videoRepo, uploader, queueClient,
		usecase.NewPlaylistEvictor(playlistRepo, playlistCache))

	r := setupRouter(logger, cfg, routerDeps{
		videos:    handler.NewVideoHandler(videoSvc, handler.NewUploadReceiver(cfg.Server.UploadTempDir, cfg.Server.MaxUploadSize)),
		likes:     handler.NewLikeHandler(usecase.NewLikeService(likeRepo, videoRepo)),
		playlists: handler.NewPlaylistHandler(playlistSvc),
		channels:  handler.NewChannelHandler(usecase.NewChannelService(channelRepo)),
		health:    handler.NewHealthHandler(pgClient),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
