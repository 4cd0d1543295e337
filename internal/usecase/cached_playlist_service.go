package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/infrastructure/cache"
	"github.com/hszk-dev/vidvault/internal/infrastructure/metrics"
	"github.com/hszk-dev/vidvault/internal/pagination"
)

// CachedPlaylistServiceConfig holds configuration for CachedPlaylistService.
type CachedPlaylistServiceConfig struct {
	// CacheTTL is the TTL for cached playlist details.
	CacheTTL time.Duration
}

// DefaultCachedPlaylistServiceConfig returns the default configuration.
func DefaultCachedPlaylistServiceConfig() CachedPlaylistServiceConfig {
	return CachedPlaylistServiceConfig{
		CacheTTL: 5 * time.Minute,
	}
}

// cachedPlaylistService wraps PlaylistService with a read-through cache for
// GetPlaylist. Mutations go to the delegate and evict the entry afterwards.
// Changes to the nested videos are evicted through PlaylistEvictor.
type cachedPlaylistService struct {
	delegate PlaylistService
	cache    cache.PlaylistCache
	sfGroup  singleflight.Group

	cacheTTL time.Duration
}

// NewCachedPlaylistService creates a new PlaylistService wrapping delegate.
func NewCachedPlaylistService(
	delegate PlaylistService,
	playlistCache cache.PlaylistCache,
	cfg CachedPlaylistServiceConfig,
) PlaylistService {
	return &cachedPlaylistService{
		delegate: delegate,
		cache:    playlistCache,
		cacheTTL: cfg.CacheTTL,
	}
}

func (s *cachedPlaylistService) CreatePlaylist(ctx context.Context, input CreatePlaylistInput) (*model.Playlist, error) {
	return s.delegate.CreatePlaylist(ctx, input)
}

// GetPlaylist coalesces concurrent requests for the same playlist.
func (s *cachedPlaylistService) GetPlaylist(ctx context.Context, playlistID uuid.UUID) (*model.PlaylistDetail, error) {
	result, err, shared := s.sfGroup.Do(playlistID.String(), func() (any, error) {
		return s.getPlaylistWithCache(ctx, playlistID)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}

	// Callers may share the pointer; hand each one its own copy.
	detail := *result.(*model.PlaylistDetail)
	detail.Videos = append([]model.VideoCard(nil), detail.Videos...)
	return &detail, nil
}

// getPlaylistWithCache implements the cache-aside pattern.
func (s *cachedPlaylistService) getPlaylistWithCache(ctx context.Context, playlistID uuid.UUID) (*model.PlaylistDetail, error) {
	detail, err := s.cache.Get(ctx, playlistID)
	if err != nil {
		slog.Warn("cache get failed, falling back to database",
			"playlist_id", playlistID,
			"error", err,
		)
	}

	if detail != nil {
		return detail, nil
	}

	detail, err = s.delegate.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, detail, s.cacheTTL); err != nil {
		slog.Warn("failed to cache playlist",
			"playlist_id", playlistID,
			"error", err,
		)
	}

	return detail, nil
}

func (s *cachedPlaylistService) ListUserPlaylists(ctx context.Context, ownerID, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.PlaylistDetail], error) {
	return s.delegate.ListUserPlaylists(ctx, ownerID, viewer, page)
}

func (s *cachedPlaylistService) UpdatePlaylist(ctx context.Context, input UpdatePlaylistInput) (*model.Playlist, error) {
	playlist, err := s.delegate.UpdatePlaylist(ctx, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.PlaylistID)
	return playlist, nil
}

func (s *cachedPlaylistService) DeletePlaylist(ctx context.Context, playlistID, viewer uuid.UUID) error {
	if err := s.delegate.DeletePlaylist(ctx, playlistID, viewer); err != nil {
		return err
	}
	s.invalidate(ctx, playlistID)
	return nil
}

func (s *cachedPlaylistService) AddVideo(ctx context.Context, playlistID, videoID, viewer uuid.UUID) error {
	if err := s.delegate.AddVideo(ctx, playlistID, videoID, viewer); err != nil {
		return err
	}
	s.invalidate(ctx, playlistID)
	return nil
}

func (s *cachedPlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID, viewer uuid.UUID) error {
	if err := s.delegate.RemoveVideo(ctx, playlistID, videoID, viewer); err != nil {
		return err
	}
	s.invalidate(ctx, playlistID)
	return nil
}

func (s *cachedPlaylistService) invalidate(ctx context.Context, playlistID uuid.UUID) {
	evictPlaylist(ctx, s.cache, playlistID)
}

// PlaylistEvictor drops cached playlist views that embed a video. Callers
// collect the affected playlists before changing the video, because a
// deletion removes the memberships, and evict them once the change is stored.
type PlaylistEvictor interface {
	PlaylistsWithVideo(ctx context.Context, videoID uuid.UUID) []uuid.UUID
	Evict(ctx context.Context, playlistIDs []uuid.UUID)
}

type playlistEvictor struct {
	playlists repository.PlaylistRepository
	cache     cache.PlaylistCache
}

// NewPlaylistEvictor creates a PlaylistEvictor over the playlist store and
// the cache used by NewCachedPlaylistService.
func NewPlaylistEvictor(playlists repository.PlaylistRepository, playlistCache cache.PlaylistCache) PlaylistEvictor {
	return &playlistEvictor{playlists: playlists, cache: playlistCache}
}

// PlaylistsWithVideo returns nil when the lookup fails; the entries then
// expire after the TTL.
func (e *playlistEvictor) PlaylistsWithVideo(ctx context.Context, videoID uuid.UUID) []uuid.UUID {
	ids, err := e.playlists.ListIDsByVideo(ctx, videoID)
	if err != nil {
		slog.WarnContext(ctx, "failed to look up playlists containing video",
			"video_id", videoID,
			"error", err,
		)
		return nil
	}
	return ids
}

func (e *playlistEvictor) Evict(ctx context.Context, playlistIDs []uuid.UUID) {
	for _, id := range playlistIDs {
		evictPlaylist(ctx, e.cache, id)
	}
}

type nopPlaylistEvictor struct{}

func (nopPlaylistEvictor) PlaylistsWithVideo(context.Context, uuid.UUID) []uuid.UUID { return nil }
func (nopPlaylistEvictor) Evict(context.Context, []uuid.UUID) {}

// evictPlaylist deletes one entry. Failure is non-critical: the entry
// expires after the TTL anyway.
func evictPlaylist(ctx context.Context, playlistCache cache.PlaylistCache, playlistID uuid.UUID) {
	if err := playlistCache.Delete(ctx, playlistID); err != nil {
		slog.Warn("failed to invalidate playlist cache",
			"playlist_id", playlistID,
			"error", err,
		)
	}
}
