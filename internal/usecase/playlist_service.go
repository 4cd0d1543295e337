package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/authz"
	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/pagination"
)

// CreatePlaylistInput contains the input parameters for creating a playlist.
type CreatePlaylistInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
}

// UpdatePlaylistInput contains the editable fields of a playlist.
type UpdatePlaylistInput struct {
	PlaylistID  uuid.UUID
	Viewer      uuid.UUID
	Name        string
	Description string
}

// PlaylistService defines the interface for playlist operations.
type PlaylistService interface {
	CreatePlaylist(ctx context.Context, input CreatePlaylistInput) (*model.Playlist, error)

	// GetPlaylist returns the playlist with its published videos. The
	// result does not depend on the viewer.
	GetPlaylist(ctx context.Context, playlistID uuid.UUID) (*model.PlaylistDetail, error)

	ListUserPlaylists(ctx context.Context, ownerID, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.PlaylistDetail], error)

	UpdatePlaylist(ctx context.Context, input UpdatePlaylistInput) (*model.Playlist, error)

	DeletePlaylist(ctx context.Context, playlistID, viewer uuid.UUID) error

	// AddVideo appends the video; adding a video twice is a no-op.
	AddVideo(ctx context.Context, playlistID, videoID, viewer uuid.UUID) error

	RemoveVideo(ctx context.Context, playlistID, videoID, viewer uuid.UUID) error
}

type playlistService struct {
	playlists repository.PlaylistRepository
	videos    repository.VideoRepository
}

// NewPlaylistService creates a new PlaylistService instance.
func NewPlaylistService(playlists repository.PlaylistRepository, videos repository.VideoRepository) PlaylistService {
	return &playlistService{
		playlists: playlists,
		videos:    videos,
	}
}

func (s *playlistService) CreatePlaylist(ctx context.Context, input CreatePlaylistInput) (*model.Playlist, error) {
	if err := requireViewer(input.OwnerID); err != nil {
		return nil, err
	}

	playlist, err := model.NewPlaylist(input.OwnerID, input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}

	return playlist, nil
}

func (s *playlistService) GetPlaylist(ctx context.Context, playlistID uuid.UUID) (*model.PlaylistDetail, error) {
	return s.playlists.GetDetail(ctx, playlistID)
}

func (s *playlistService) ListUserPlaylists(ctx context.Context, ownerID, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.PlaylistDetail], error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrInvalidID
	}
	return s.playlists.ListByOwner(ctx, ownerID, viewer, page)
}

func (s *playlistService) UpdatePlaylist(ctx context.Context, input UpdatePlaylistInput) (*model.Playlist, error) {
	if err := requireViewer(input.Viewer); err != nil {
		return nil, err
	}

	return authz.Guard(ctx, input.Viewer, authz.UpdatePlaylist,
		func(ctx context.Context) (*model.Playlist, error) {
			return s.playlists.GetByID(ctx, input.PlaylistID)
		},
		func(ctx context.Context, playlist *model.Playlist) (*model.Playlist, error) {
			if err := playlist.Rename(input.Name, input.Description); err != nil {
				return nil, err
			}
			if err := s.playlists.Update(ctx, playlist); err != nil {
				return nil, fmt.Errorf("update playlist: %w", err)
			}
			return playlist, nil
		},
	)
}

func (s *playlistService) DeletePlaylist(ctx context.Context, playlistID, viewer uuid.UUID) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}

	_, err := authz.Guard(ctx, viewer, authz.DeletePlaylist,
		func(ctx context.Context) (*model.Playlist, error) {
			return s.playlists.GetByID(ctx, playlistID)
		},
		func(ctx context.Context, playlist *model.Playlist) (struct{}, error) {
			if err := s.playlists.Delete(ctx, playlist.ID); err != nil {
				return struct{}{}, fmt.Errorf("delete playlist: %w", err)
			}
			return struct{}{}, nil
		},
	)
	return err
}

func (s *playlistService) AddVideo(ctx context.Context, playlistID, videoID, viewer uuid.UUID) error {
	return s.changeMembership(ctx, authz.AddToPlaylist, playlistID, videoID, viewer, s.playlists.AddVideo)
}

func (s *playlistService) RemoveVideo(ctx context.Context, playlistID, videoID, viewer uuid.UUID) error {
	return s.changeMembership(ctx, authz.RemoveFromPlaylist, playlistID, videoID, viewer, s.playlists.RemoveVideo)
}

// changeMembership reports a missing playlist, then a missing video, and
// only then checks ownership. Another owner's draft counts as missing when
// adding.
func (s *playlistService) changeMembership(
	ctx context.Context,
	action authz.Action,
	playlistID, videoID, viewer uuid.UUID,
	change func(ctx context.Context, playlistID, videoID uuid.UUID) error,
) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}

	_, err := authz.Guard(ctx, viewer, action,
		func(ctx context.Context) (*model.Playlist, error) {
			playlist, err := s.playlists.GetByID(ctx, playlistID)
			if err != nil {
				return nil, err
			}
			video, err := s.videos.GetByID(ctx, videoID)
			if err != nil {
				return nil, err
			}
			// Removing stays possible after a member video became a draft.
			if action == authz.AddToPlaylist && !video.VisibleTo(viewer) {
				return nil, repository.ErrVideoNotFound
			}
			return playlist, nil
		},
		func(ctx context.Context, playlist *model.Playlist) (struct{}, error) {
			if err := change(ctx, playlist.ID, videoID); err != nil {
				return struct{}{}, fmt.Errorf("%s: %w", action, err)
			}
			return struct{}{}, nil
		},
	)
	return err
}
