package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/pagination"
)

// DiscoverChannelsInput contains the parameters of channel discovery.
type DiscoverChannelsInput struct {
	Viewer uuid.UUID
	Search string
	// Sort is one of "subscribers", "videos" or "recent". Anything else
	// ranks by subscribers.
	Sort string
	Page pagination.Params
}

// ChannelService defines the interface for channel read operations.
type ChannelService interface {
	DiscoverChannels(ctx context.Context, input DiscoverChannelsInput) (*pagination.Page[model.ChannelSummary], error)

	GetChannelProfile(ctx context.Context, username string, viewer uuid.UUID) (*model.ChannelProfile, error)
}

type channelService struct {
	repo repository.ChannelRepository
}

// NewChannelService creates a new ChannelService instance.
func NewChannelService(repo repository.ChannelRepository) ChannelService {
	return &channelService{repo: repo}
}

func (s *channelService) DiscoverChannels(ctx context.Context, input DiscoverChannelsInput) (*pagination.Page[model.ChannelSummary], error) {
	q := repository.ChannelQuery{
		Viewer: input.Viewer,
		Search: input.Search,
		Sort:   repository.ParseChannelSort(input.Sort),
	}
	return s.repo.Discover(ctx, q, input.Page)
}

func (s *channelService) GetChannelProfile(ctx context.Context, username string, viewer uuid.UUID) (*model.ChannelProfile, error) {
	return s.repo.GetProfile(ctx, username, viewer)
}
