package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/pagination"
	"github.com/hszk-dev/vidvault/internal/pipeline"
	"github.com/hszk-dev/vidvault/internal/viewer"
)

// ChannelRepository implements repository.ChannelRepository using PostgreSQL.
type ChannelRepository struct {
	db DBTX
}

// NewChannelRepository creates a new ChannelRepository instance.
func NewChannelRepository(db DBTX) *ChannelRepository {
	return &ChannelRepository{db: db}
}

var channelSortFields = map[repository.ChannelSort]string{
	repository.SortBySubscribers: "subscribers_count",
	repository.SortByVideos:      "videos_count",
	repository.SortByRecent:      "created_at",
}

// Discover returns one page of channels ranked by q.Sort, highest first.
func (r *ChannelRepository) Discover(ctx context.Context, q repository.ChannelQuery, page pagination.Params) (*pagination.Page[model.ChannelSummary], error) {
	key, ok := channelSortFields[q.Sort]
	if !ok {
		key = channelSortFields[repository.SortBySubscribers]
	}

	p := pipeline.From("users", "u").
		Search(q.Search, "username", "fullname").
		Project("id", "username", "fullname", "avatar", "cover_image", "created_at").
		Lookup(subscribersLookup("u")).
		Lookup(publishedVideosLookup("u"))
	p = viewer.Resolve(p, q.Viewer, viewer.Subscribers).
		AddField("videos_count", pipeline.Size("videos")).
		SortBy(key, pipeline.Desc).
		Paginate(page)

	result, err := pipeline.Run(ctx, r.db, p, pgx.RowToStructByPos[model.ChannelSummary])
	if err != nil {
		return nil, fmt.Errorf("failed to discover channels: %w", err)
	}

	return pagination.NewPage(page, result.Items, result.Total), nil
}

// GetProfile looks the channel up by username, case-insensitively.
func (r *ChannelRepository) GetProfile(ctx context.Context, username string, viewerID uuid.UUID) (*model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, repository.ErrChannelNotFound
	}

	p := pipeline.From("users", "u").
		Match(pipeline.Eq("LOWER(u.username)", username)).
		Project("id", "username", "fullname", "email", "avatar", "cover_image", "created_at").
		Lookup(subscribersLookup("u")).
		Lookup(pipeline.Join{
			As:         "subscribed_to",
			From:       pipeline.From("subscriptions", "st"),
			LocalKey:   "u.id",
			ForeignKey: "st.subscriber_id",
		}).
		Lookup(publishedVideosLookup("u"))
	p = viewer.Resolve(p, viewerID, viewer.Subscribers).
		AddField("channels_subscribed_to_count", pipeline.Size("subscribed_to")).
		AddField("videos_count", pipeline.Size("videos"))

	profile, err := pipeline.One(ctx, r.db, p, pgx.RowToStructByPos[model.ChannelProfile])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel profile: %w", err)
	}

	return &profile, nil
}

// Compile-time verification that ChannelRepository implements repository.ChannelRepository.
var _ repository.ChannelRepository = (*ChannelRepository)(nil)
