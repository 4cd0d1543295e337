package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/pagination"
)

// PlaylistRepository defines the interface for playlist persistence.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error

	// GetByID returns ErrPlaylistNotFound if the playlist does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Playlist, error)

	// GetDetail returns the playlist with its owner and published videos.
	GetDetail(ctx context.Context, id uuid.UUID) (*model.PlaylistDetail, error)

	// ListByOwner returns one page of ownerID's playlists, most recently
	// updated first. Nested drafts are visible only when viewer is their owner.
	ListByOwner(ctx context.Context, ownerID, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.PlaylistDetail], error)

	Update(ctx context.Context, playlist *model.Playlist) error

	Delete(ctx context.Context, id uuid.UUID) error

	// AddVideo appends the video unless it is already present.
	AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error

	// RemoveVideo removes the video if present.
	RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error

	// ListIDsByVideo returns the playlists that contain videoID.
	ListIDsByVideo(ctx context.Context, videoID uuid.UUID) ([]uuid.UUID, error)
}
