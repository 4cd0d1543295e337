package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/pagination"
	"github.com/hszk-dev/vidvault/internal/usecase"
)

// mockVideoService provides a configurable mock for VideoService.
type mockVideoService struct {
	listVideosFn          func(ctx context.Context, input usecase.ListVideosInput) (*pagination.Page[model.VideoSummary], error)
	publishVideoFn        func(ctx context.Context, input usecase.PublishVideoInput) (*model.Video, error)
	getVideoFn            func(ctx context.Context, videoID, viewer uuid.UUID) (*model.VideoDetail, error)
	updateVideoFn         func(ctx context.Context, input usecase.UpdateVideoInput) (*model.Video, error)
	deleteVideoFn         func(ctx context.Context, videoID, viewer uuid.UUID) error
	togglePublishStatusFn func(ctx context.Context, videoID, viewer uuid.UUID) (*model.Video, error)
}

func (m *mockVideoService) ListVideos(ctx context.Context, input usecase.ListVideosInput) (*pagination.Page[model.VideoSummary], error) {
	if m.listVideosFn != nil {
		return m.listVideosFn(ctx, input)
	}
	return pagination.NewPage[model.VideoSummary](input.Page, nil, 0), nil
}

func (m *mockVideoService) PublishVideo(ctx context.Context, input usecase.PublishVideoInput) (*model.Video, error) {
	if m.publishVideoFn != nil {
		return m.publishVideoFn(ctx, input)
	}
	return nil, nil
}

func (m *mockVideoService) GetVideo(ctx context.Context, videoID, viewer uuid.UUID) (*model.VideoDetail, error) {
	if m.getVideoFn != nil {
		return m.getVideoFn(ctx, videoID, viewer)
	}
	return nil, nil
}

func (m *mockVideoService) UpdateVideo(ctx context.Context, input usecase.UpdateVideoInput) (*model.Video, error) {
	if m.updateVideoFn != nil {
		return m.updateVideoFn(ctx, input)
	}
	return nil, nil
}

func (m *mockVideoService) DeleteVideo(ctx context.Context, videoID, viewer uuid.UUID) error {
	if m.deleteVideoFn != nil {
		return m.deleteVideoFn(ctx, videoID, viewer)
	}
	return nil
}

func (m *mockVideoService) TogglePublishStatus(ctx context.Context, videoID, viewer uuid.UUID) (*model.Video, error) {
	if m.togglePublishStatusFn != nil {
		return m.togglePublishStatusFn(ctx, videoID, viewer)
	}
	return nil, nil
}

// mockLikeService provides a configurable mock for LikeService.
type mockLikeService struct {
	toggleLikeFn      func(ctx context.Context, target model.LikeTarget, targetID, viewer uuid.UUID) (*model.ToggleResult, error)
	listLikedVideosFn func(ctx context.Context, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.LikedVideo], error)
}

func (m *mockLikeService) ToggleLike(ctx context.Context, target model.LikeTarget, targetID, viewer uuid.UUID) (*model.ToggleResult, error) {
	if m.toggleLikeFn != nil {
		return m.toggleLikeFn(ctx, target, targetID, viewer)
	}
	return &model.ToggleResult{Target: target, TargetID: targetID, IsLiked: true}, nil
}

func (m *mockLikeService) ListLikedVideos(ctx context.Context, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.LikedVideo], error) {
	if m.listLikedVideosFn != nil {
		return m.listLikedVideosFn(ctx, viewer, page)
	}
	return pagination.NewPage[model.LikedVideo](page, nil, 0), nil
}

// mockPlaylistService provides a configurable mock for PlaylistService.
type mockPlaylistService struct {
	createPlaylistFn    func(ctx context.Context, input usecase.CreatePlaylistInput) (*model.Playlist, error)
	getPlaylistFn       func(ctx context.Context, playlistID uuid.UUID) (*model.PlaylistDetail, error)
	listUserPlaylistsFn func(ctx context.Context, ownerID, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.PlaylistDetail], error)
	updatePlaylistFn    func(ctx context.Context, input usecase.UpdatePlaylistInput) (*model.Playlist, error)
	deletePlaylistFn    func(ctx context.Context, playlistID, viewer uuid.UUID) error
	addVideoFn          func(ctx context.Context, playlistID, videoID, viewer uuid.UUID) error
	removeVideoFn       func(ctx context.Context, playlistID, videoID, viewer uuid.UUID) error
}

func (m *mockPlaylistService) CreatePlaylist(ctx context.Context, input usecase.CreatePlaylistInput) (*model.Playlist, error) {
	if m.createPlaylistFn != nil {
		return m.createPlaylistFn(ctx, input)
	}
	return nil, nil
}

func (m *mockPlaylistService) GetPlaylist(ctx context.Context, playlistID uuid.UUID) (*model.PlaylistDetail, error) {
	if m.getPlaylistFn != nil {
		return m.getPlaylistFn(ctx, playlistID)
	}
	return nil, nil
}

func (m *mockPlaylistService) ListUserPlaylists(ctx context.Context, ownerID, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.PlaylistDetail], error) {
	if m.listUserPlaylistsFn != nil {
		return m.listUserPlaylistsFn(ctx, ownerID, viewer, page)
	}
	return pagination.NewPage[model.PlaylistDetail](page, nil, 0), nil
}

func (m *mockPlaylistService) UpdatePlaylist(ctx context.Context, input usecase.UpdatePlaylistInput) (*model.Playlist, error) {
	if m.updatePlaylistFn != nil {
		return m.updatePlaylistFn(ctx, input)
	}
	return nil, nil
}

func (m *mockPlaylistService) DeletePlaylist(ctx context.Context, playlistID, viewer uuid.UUID) error {
	if m.deletePlaylistFn != nil {
		return m.deletePlaylistFn(ctx, playlistID, viewer)
	}
	return nil
}

func (m *mockPlaylistService) AddVideo(ctx context.Context, playlistID, videoID, viewer uuid.UUID) error {
	if m.addVideoFn != nil {
		return m.addVideoFn(ctx, playlistID, videoID, viewer)
	}
	return nil
}

func (m *mockPlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID, viewer uuid.UUID) error {
	if m.removeVideoFn != nil {
		return m.removeVideoFn(ctx, playlistID, videoID, viewer)
	}
	return nil
}

// mockChannelService provides a configurable mock for ChannelService.
type mockChannelService struct {
	discoverChannelsFn  func(ctx context.Context, input usecase.DiscoverChannelsInput) (*pagination.Page[model.ChannelSummary], error)
	getChannelProfileFn func(ctx context.Context, username string, viewer uuid.UUID) (*model.ChannelProfile, error)
}

func (m *mockChannelService) DiscoverChannels(ctx context.Context, input usecase.DiscoverChannelsInput) (*pagination.Page[model.ChannelSummary], error) {
	if m.discoverChannelsFn != nil {
		return m.discoverChannelsFn(ctx, input)
	}
	return pagination.NewPage[model.ChannelSummary](input.Page, nil, 0), nil
}

func (m *mockChannelService) GetChannelProfile(ctx context.Context, username string, viewer uuid.UUID) (*model.ChannelProfile, error) {
	if m.getChannelProfileFn != nil {
		return m.getChannelProfileFn(ctx, username, viewer)
	}
	return nil, nil
}

// envelope mirrors Response with the payload left undecoded.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Error      string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", rec.Body.String(), err)
	}
	if env.StatusCode != rec.Code {
		t.Errorf("envelope statusCode = %d, HTTP status = %d", env.StatusCode, rec.Code)
	}
	return env
}
