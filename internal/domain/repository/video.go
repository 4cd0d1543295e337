package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/pagination"
)

// VideoSortKeys maps accepted sortBy values to columns.
var VideoSortKeys = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

// VideoQuery filters a video listing.
type VideoQuery struct {
	// Viewer is the requesting user; uuid.Nil when anonymous.
	Viewer uuid.UUID
	// OwnerID restricts the listing to one channel when not uuid.Nil.
	// Drafts are included only when OwnerID equals Viewer.
	OwnerID uuid.UUID
	// Search is matched case-insensitively against title and description.
	Search string
	// SortBy is a key of VideoSortKeys.
	SortBy string
	// Descending reverses the sort.
	Descending bool
}

// VideoRepository defines the interface for video persistence operations.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL).
type VideoRepository interface {
	// Create persists a new video entity.
	// Returns error if the video already exists or persistence fails.
	Create(ctx context.Context, video *model.Video) error

	// GetByID retrieves a video by its unique identifier.
	// Returns nil and ErrVideoNotFound if the video does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error)

	// GetDetail returns the enriched single-video view as seen by viewer.
	// Visibility is not checked here.
	GetDetail(ctx context.Context, id, viewer uuid.UUID) (*model.VideoDetail, error)

	// List returns one page of videos visible under q.
	List(ctx context.Context, q VideoQuery, page pagination.Params) (*pagination.Page[model.VideoSummary], error)

	// ListLikedBy returns the videos liked by userID, newest like first.
	// Other owners' drafts are left out.
	ListLikedBy(ctx context.Context, userID uuid.UUID, page pagination.Params) (*pagination.Page[model.LikedVideo], error)

	// Update persists title, description and thumbnail.
	// Returns ErrVideoNotFound if the video does not exist.
	Update(ctx context.Context, video *model.Video) error

	// TogglePublish flips the publish flag in place and returns the new state.
	TogglePublish(ctx context.Context, id uuid.UUID) (*model.Video, error)

	// IncrementViews adds one view without reading the current count.
	IncrementViews(ctx context.Context, id uuid.UUID) error

	// RecordWatch adds the video to the user's watch history.
	RecordWatch(ctx context.Context, userID, videoID uuid.UUID) error

	// Delete removes the video together with its likes, comments (and their
	// likes), playlist memberships and watch history, atomically.
	Delete(ctx context.Context, id uuid.UUID) error
}
