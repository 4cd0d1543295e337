package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
)

// PlaylistCache defines the interface for caching playlist detail views.
// Only viewer-independent views are cached.
type PlaylistCache interface {
	// Get retrieves a playlist detail by playlist ID.
	// Returns nil, nil on a cache miss.
	Get(ctx context.Context, playlistID uuid.UUID) (*model.PlaylistDetail, error)

	// Set stores a playlist detail with the specified TTL.
	Set(ctx context.Context, detail *model.PlaylistDetail, ttl time.Duration) error

	// Delete removes a playlist detail. Returns nil if it was not cached.
	Delete(ctx context.Context, playlistID uuid.UUID) error
}
