package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/infrastructure/metrics"
)

const (
	// DefaultMaxRetries is the default number of attempts before a cleanup
	// task is dropped.
	DefaultMaxRetries = 3
)

// CleanupServiceConfig holds configuration for CleanupService.
type CleanupServiceConfig struct {
	// MaxRetries is the number of failed attempts after which a task is dropped.
	MaxRetries int
}

// DefaultCleanupServiceConfig returns the default configuration.
func DefaultCleanupServiceConfig() CleanupServiceConfig {
	return CleanupServiceConfig{
		MaxRetries: DefaultMaxRetries,
	}
}

// CleanupService defines the interface for deleting orphaned stored assets.
type CleanupService interface {
	// ProcessTask handles a cleanup task from the message queue.
	// Returns nil on success or when the task is dropped after too many
	// attempts. Returns error when some object could not be removed and
	// the task should be retried.
	ProcessTask(ctx context.Context, task repository.AssetCleanupTask) error
}

type cleanupService struct {
	storage repository.ObjectStorage

	maxRetries int
}

// NewCleanupService creates a new CleanupService instance.
func NewCleanupService(storage repository.ObjectStorage, cfg CleanupServiceConfig) CleanupService {
	return &cleanupService{
		storage:    storage,
		maxRetries: cfg.MaxRetries,
	}
}

// ProcessTask deletes every key of the task. Keys that are already gone
// count as done, so a retried task only redoes the failed deletions.
func (s *cleanupService) ProcessTask(ctx context.Context, task repository.AssetCleanupTask) error {
	if task.RetryCount >= s.maxRetries {
		slog.Error("dropping asset cleanup task after max retries",
			"video_id", task.VideoID,
			"reason", task.Reason,
			"keys", task.Keys,
			"retry_count", task.RetryCount,
		)
		metrics.AssetCleanupTotal.WithLabelValues(metrics.AssetDropped).Add(float64(len(task.Keys)))
		return nil
	}

	var errs []error
	for _, key := range task.Keys {
		if err := s.deleteKey(ctx, key); err != nil {
			metrics.AssetCleanupTotal.WithLabelValues(metrics.AssetError).Inc()
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (s *cleanupService) deleteKey(ctx context.Context, key string) error {
	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check existence: %w", err)
	}
	if !exists {
		metrics.AssetCleanupTotal.WithLabelValues(metrics.AssetMissing).Inc()
		return nil
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		return err
	}
	metrics.AssetCleanupTotal.WithLabelValues(metrics.AssetDeleted).Inc()

	slog.Info("deleted stored asset", "key", key)
	return nil
}
