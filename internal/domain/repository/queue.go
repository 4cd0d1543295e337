package repository

import (
	"context"

	"github.com/google/uuid"
)

// AssetCleanupTask asks the worker to delete stored objects that no record
// refers to anymore.
type AssetCleanupTask struct {
	VideoID    uuid.UUID `json:"video_id"`
	Keys       []string  `json:"keys"`
	Reason     string    `json:"reason"`
	RetryCount int       `json:"retry_count"`
}

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// PublishCleanupTask sends a cleanup task to the queue.
	// Used by the API server once the owning record is gone.
	PublishCleanupTask(ctx context.Context, task AssetCleanupTask) error

	// ConsumeCleanupTasks starts consuming cleanup tasks from the queue.
	// The handler function is called for each received task.
	// Blocks until ctx is cancelled. Used by the worker service.
	ConsumeCleanupTasks(ctx context.Context, handler func(task AssetCleanupTask) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
