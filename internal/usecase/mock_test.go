package usecase

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/pagination"
)

// mockVideoRepository provides a configurable mock for VideoRepository.
type mockVideoRepository struct {
	createFn         func(ctx context.Context, video *model.Video) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*model.Video, error)
	getDetailFn      func(ctx context.Context, id, viewer uuid.UUID) (*model.VideoDetail, error)
	listFn           func(ctx context.Context, q repository.VideoQuery, page pagination.Params) (*pagination.Page[model.VideoSummary], error)
	listLikedByFn    func(ctx context.Context, userID uuid.UUID, page pagination.Params) (*pagination.Page[model.LikedVideo], error)
	updateFn         func(ctx context.Context, video *model.Video) error
	togglePublishFn  func(ctx context.Context, id uuid.UUID) (*model.Video, error)
	incrementViewsFn func(ctx context.Context, id uuid.UUID) error
	recordWatchFn    func(ctx context.Context, userID, videoID uuid.UUID) error
	deleteFn         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVideoRepository) Create(ctx context.Context, video *model.Video) error {
	if m.createFn != nil {
		return m.createFn(ctx, video)
	}
	return nil
}

func (m *mockVideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrVideoNotFound
}

func (m *mockVideoRepository) GetDetail(ctx context.Context, id, viewer uuid.UUID) (*model.VideoDetail, error) {
	if m.getDetailFn != nil {
		return m.getDetailFn(ctx, id, viewer)
	}
	return nil, repository.ErrVideoNotFound
}

func (m *mockVideoRepository) List(ctx context.Context, q repository.VideoQuery, page pagination.Params) (*pagination.Page[model.VideoSummary], error) {
	if m.listFn != nil {
		return m.listFn(ctx, q, page)
	}
	return pagination.NewPage[model.VideoSummary](page, nil, 0), nil
}

func (m *mockVideoRepository) ListLikedBy(ctx context.Context, userID uuid.UUID, page pagination.Params) (*pagination.Page[model.LikedVideo], error) {
	if m.listLikedByFn != nil {
		return m.listLikedByFn(ctx, userID, page)
	}
	return pagination.NewPage[model.LikedVideo](page, nil, 0), nil
}

func (m *mockVideoRepository) Update(ctx context.Context, video *model.Video) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, video)
	}
	return nil
}

func (m *mockVideoRepository) TogglePublish(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	if m.togglePublishFn != nil {
		return m.togglePublishFn(ctx, id)
	}
	return nil, repository.ErrVideoNotFound
}

func (m *mockVideoRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if m.incrementViewsFn != nil {
		return m.incrementViewsFn(ctx, id)
	}
	return nil
}

func (m *mockVideoRepository) RecordWatch(ctx context.Context, userID, videoID uuid.UUID) error {
	if m.recordWatchFn != nil {
		return m.recordWatchFn(ctx, userID, videoID)
	}
	return nil
}

func (m *mockVideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockPlaylistRepository provides a configurable mock for PlaylistRepository.
type mockPlaylistRepository struct {
	createFn      func(ctx context.Context, playlist *model.Playlist) error
	getByIDFn     func(ctx context.Context, id uuid.UUID) (*model.Playlist, error)
	getDetailFn   func(ctx context.Context, id uuid.UUID) (*model.PlaylistDetail, error)
	listByOwnerFn func(ctx context.Context, ownerID, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.PlaylistDetail], error)
	updateFn      func(ctx context.Context, playlist *model.Playlist) error
	deleteFn      func(ctx context.Context, id uuid.UUID) error
	addVideoFn    func(ctx context.Context, playlistID, videoID uuid.UUID) error
	removeVideoFn func(ctx context.Context, playlistID, videoID uuid.UUID) error
	listIDsFn     func(ctx context.Context, videoID uuid.UUID) ([]uuid.UUID, error)
}

func (m *mockPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	if m.createFn != nil {
		return m.createFn(ctx, playlist)
	}
	return nil
}

func (m *mockPlaylistRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Playlist, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrPlaylistNotFound
}

func (m *mockPlaylistRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.PlaylistDetail, error) {
	if m.getDetailFn != nil {
		return m.getDetailFn(ctx, id)
	}
	return nil, repository.ErrPlaylistNotFound
}

func (m *mockPlaylistRepository) ListByOwner(ctx context.Context, ownerID, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.PlaylistDetail], error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID, viewer, page)
	}
	return pagination.NewPage[model.PlaylistDetail](page, nil, 0), nil
}

func (m *mockPlaylistRepository) Update(ctx context.Context, playlist *model.Playlist) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, playlist)
	}
	return nil
}

func (m *mockPlaylistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	if m.addVideoFn != nil {
		return m.addVideoFn(ctx, playlistID, videoID)
	}
	return nil
}

func (m *mockPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	if m.removeVideoFn != nil {
		return m.removeVideoFn(ctx, playlistID, videoID)
	}
	return nil
}

func (m *mockPlaylistRepository) ListIDsByVideo(ctx context.Context, videoID uuid.UUID) ([]uuid.UUID, error) {
	if m.listIDsFn != nil {
		return m.listIDsFn(ctx, videoID)
	}
	return nil, nil
}

// mockLikeRepository keeps likes in memory and toggles them like the real
// store does.
type mockLikeRepository struct {
	mu       sync.Mutex
	likes    map[string]bool
	toggleFn func(ctx context.Context, target model.LikeTarget, targetID, userID uuid.UUID) (bool, error)
}

func newMockLikeRepository() *mockLikeRepository {
	return &mockLikeRepository{likes: make(map[string]bool)}
}

func (m *mockLikeRepository) Toggle(ctx context.Context, target model.LikeTarget, targetID, userID uuid.UUID) (bool, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, target, targetID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := target.String() + "/" + targetID.String() + "/" + userID.String()
	if m.likes[key] {
		delete(m.likes, key)
		return false, nil
	}
	m.likes[key] = true
	return true, nil
}

// mockChannelRepository provides a configurable mock for ChannelRepository.
type mockChannelRepository struct {
	discoverFn   func(ctx context.Context, q repository.ChannelQuery, page pagination.Params) (*pagination.Page[model.ChannelSummary], error)
	getProfileFn func(ctx context.Context, username string, viewer uuid.UUID) (*model.ChannelProfile, error)
}

func (m *mockChannelRepository) Discover(ctx context.Context, q repository.ChannelQuery, page pagination.Params) (*pagination.Page[model.ChannelSummary], error) {
	if m.discoverFn != nil {
		return m.discoverFn(ctx, q, page)
	}
	return pagination.NewPage[model.ChannelSummary](page, nil, 0), nil
}

func (m *mockChannelRepository) GetProfile(ctx context.Context, username string, viewer uuid.UUID) (*model.ChannelProfile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, username, viewer)
	}
	return nil, repository.ErrChannelNotFound
}

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	uploadFn func(ctx context.Context, key string, reader io.Reader, contentType string) error
	deleteFn func(ctx context.Context, key string) error
	existsFn func(ctx context.Context, key string) (bool, error)
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, contentType)
	}
	return nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return true, nil
}

const testAssetBaseURL = "http://cdn.test/media"

// mockAssetUploader provides a configurable mock for AssetUploader. By
// default uploads succeed with a key derived from the local file name.
type mockAssetUploader struct {
	mu       sync.Mutex
	uploaded []string
	uploadFn func(ctx context.Context, localPath string, kind repository.AssetKind) (*repository.UploadedAsset, error)
}

func (m *mockAssetUploader) Upload(ctx context.Context, localPath string, kind repository.AssetKind) (*repository.UploadedAsset, error) {
	m.mu.Lock()
	m.uploaded = append(m.uploaded, localPath)
	m.mu.Unlock()

	if m.uploadFn != nil {
		return m.uploadFn(ctx, localPath, kind)
	}
	key := string(kind) + "/" + localPath[strings.LastIndex(localPath, "/")+1:]
	return &repository.UploadedAsset{
		Key: key,
		URL: testAssetBaseURL + "/" + key,
	}, nil
}

func (m *mockAssetUploader) KeyFromURL(url string) (string, bool) {
	return strings.CutPrefix(url, testAssetBaseURL+"/")
}

// mockMessageQueue records published cleanup tasks.
type mockMessageQueue struct {
	mu                    sync.Mutex
	published             []repository.AssetCleanupTask
	publishCleanupTaskFn  func(ctx context.Context, task repository.AssetCleanupTask) error
	consumeCleanupTasksFn func(ctx context.Context, handler func(task repository.AssetCleanupTask) error) error
}

func (m *mockMessageQueue) PublishCleanupTask(ctx context.Context, task repository.AssetCleanupTask) error {
	if m.publishCleanupTaskFn != nil {
		return m.publishCleanupTaskFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, task)
	return nil
}

func (m *mockMessageQueue) ConsumeCleanupTasks(ctx context.Context, handler func(task repository.AssetCleanupTask) error) error {
	if m.consumeCleanupTasksFn != nil {
		return m.consumeCleanupTasksFn(ctx, handler)
	}
	return nil
}

func (m *mockMessageQueue) Close() error {
	return nil
}

func (m *mockMessageQueue) tasks() []repository.AssetCleanupTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.AssetCleanupTask(nil), m.published...)
}

// mockPlaylistCache is an in-memory PlaylistCache.
type mockPlaylistCache struct {
	mu       sync.RWMutex
	data     map[uuid.UUID]*model.PlaylistDetail
	getFn    func(ctx context.Context, playlistID uuid.UUID) (*model.PlaylistDetail, error)
	setFn    func(ctx context.Context, detail *model.PlaylistDetail, ttl time.Duration) error
	deleteFn func(ctx context.Context, playlistID uuid.UUID) error
}

func newMockPlaylistCache() *mockPlaylistCache {
	return &mockPlaylistCache{
		data: make(map[uuid.UUID]*model.PlaylistDetail),
	}
}

func (m *mockPlaylistCache) Get(ctx context.Context, playlistID uuid.UUID) (*model.PlaylistDetail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, playlistID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[playlistID], nil
}

func (m *mockPlaylistCache) Set(ctx context.Context, detail *model.PlaylistDetail, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, detail, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[detail.ID] = detail
	return nil
}

func (m *mockPlaylistCache) Delete(ctx context.Context, playlistID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, playlistID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, playlistID)
	return nil
}

func (m *mockPlaylistCache) has(playlistID uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[playlistID]
	return ok
}
