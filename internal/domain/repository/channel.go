package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/pagination"
)

// ChannelSort ranks discovered channels.
type ChannelSort string

const (
	SortBySubscribers ChannelSort = "subscribers"
	SortByVideos      ChannelSort = "videos"
	SortByRecent      ChannelSort = "recent"
)

// ParseChannelSort falls back to SortBySubscribers for unknown values.
func ParseChannelSort(s string) ChannelSort {
	switch ChannelSort(s) {
	case SortByVideos, SortByRecent:
		return ChannelSort(s)
	default:
		return SortBySubscribers
	}
}

// ChannelQuery filters channel discovery.
type ChannelQuery struct {
	Viewer uuid.UUID
	Search string
	Sort   ChannelSort
}

// ChannelRepository reads users as channels.
type ChannelRepository interface {
	// Discover returns one page of channels ranked by q.Sort.
	Discover(ctx context.Context, q ChannelQuery, page pagination.Params) (*pagination.Page[model.ChannelSummary], error)

	// GetProfile returns ErrChannelNotFound when no user has the username.
	GetProfile(ctx context.Context, username string, viewer uuid.UUID) (*model.ChannelProfile, error)
}
