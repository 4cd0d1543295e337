package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/authz"
	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/pagination"
	"github.com/hszk-dev/vidvault/internal/pipeline"
)

// Reasons attached to asset cleanup tasks.
const (
	ReasonVideoDeleted      = "video_deleted"
	ReasonThumbnailReplaced = "thumbnail_replaced"
	ReasonPublishAborted    = "publish_aborted"
	ReasonUpdateAborted     = "update_aborted"
)

// ListVideosInput contains the parameters of a video listing.
type ListVideosInput struct {
	Viewer  uuid.UUID
	OwnerID uuid.UUID
	Search  string
	// SortBy is a key of repository.VideoSortKeys; unknown keys sort by
	// creation time.
	SortBy string
	// SortType is "asc" or "desc"; anything else means descending.
	SortType string
	Page     pagination.Params
}

// PublishVideoInput contains the input parameters for publishing a video.
// The paths point at local files received with the request.
type PublishVideoInput struct {
	OwnerID       uuid.UUID
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
	Draft         bool
}

// UpdateVideoInput contains the editable fields of a video. An empty
// ThumbnailPath keeps the current thumbnail.
type UpdateVideoInput struct {
	VideoID       uuid.UUID
	Viewer        uuid.UUID
	Title         string
	Description   string
	ThumbnailPath string
}

// VideoService defines the interface for video business logic operations.
type VideoService interface {
	// ListVideos returns one page of videos. Drafts are included only when
	// the listing is scoped to the viewer's own channel.
	ListVideos(ctx context.Context, input ListVideosInput) (*pagination.Page[model.VideoSummary], error)

	// PublishVideo uploads the media files and creates the video. Nothing
	// is persisted when an upload fails.
	PublishVideo(ctx context.Context, input PublishVideoInput) (*model.Video, error)

	// GetVideo returns the video as seen by viewer and counts a view.
	// Drafts of other owners are reported as not found.
	GetVideo(ctx context.Context, videoID, viewer uuid.UUID) (*model.VideoDetail, error)

	UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error)

	// DeleteVideo removes the video with its likes and comments, then
	// schedules deletion of its stored files.
	DeleteVideo(ctx context.Context, videoID, viewer uuid.UUID) error

	TogglePublishStatus(ctx context.Context, videoID, viewer uuid.UUID) (*model.Video, error)
}

type videoService struct {
	repo      repository.VideoRepository
	uploader  repository.AssetUploader
	queue     repository.MessageQueue
	playlists PlaylistEvictor
}

// NewVideoService creates a new VideoService instance. playlists may be nil
// when playlist views are not cached.
func NewVideoService(
	repo repository.VideoRepository,
	uploader repository.AssetUploader,
	queue repository.MessageQueue,
	playlists PlaylistEvictor,
) VideoService {
	if playlists == nil {
		playlists = nopPlaylistEvictor{}
	}
	return &videoService{
		repo:      repo,
		uploader:  uploader,
		queue:     queue,
		playlists: playlists,
	}
}

func (s *videoService) ListVideos(ctx context.Context, input ListVideosInput) (*pagination.Page[model.VideoSummary], error) {
	q := repository.VideoQuery{
		Viewer:     input.Viewer,
		OwnerID:    input.OwnerID,
		Search:     input.Search,
		SortBy:     input.SortBy,
		Descending: pipeline.ParseDirection(input.SortType, pipeline.Desc) == pipeline.Desc,
	}
	return s.repo.List(ctx, q, input.Page)
}

// PublishVideo uploads the video file, then the optional thumbnail, and
// creates the record. On failure every file uploaded so far is scheduled
// for deletion.
func (s *videoService) PublishVideo(ctx context.Context, input PublishVideoInput) (*model.Video, error) {
	if err := requireViewer(input.OwnerID); err != nil {
		return nil, err
	}
	if input.VideoPath == "" {
		return nil, model.ErrMissingVideoFile
	}
	if _, _, err := model.ValidateVideoDetails(input.Title, input.Description); err != nil {
		return nil, err
	}

	media, err := s.uploader.Upload(ctx, input.VideoPath, repository.AssetVideo)
	if err != nil {
		return nil, fmt.Errorf("upload video file: %w", err)
	}
	uploaded := []string{media.Key}

	var thumbnailURL string
	if input.ThumbnailPath != "" {
		thumb, err := s.uploader.Upload(ctx, input.ThumbnailPath, repository.AssetThumbnail)
		if err != nil {
			s.scheduleCleanup(ctx, uuid.Nil, ReasonPublishAborted, uploaded)
			return nil, fmt.Errorf("upload thumbnail: %w", err)
		}
		uploaded = append(uploaded, thumb.Key)
		thumbnailURL = thumb.URL
	}

	video, err := model.NewVideo(model.NewVideoParams{
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Description: input.Description,
		VideoFile:   media.URL,
		Thumbnail:   thumbnailURL,
		Duration:    media.Duration,
		Draft:       input.Draft,
	})
	if err != nil {
		s.scheduleCleanup(ctx, uuid.Nil, ReasonPublishAborted, uploaded)
		return nil, err
	}

	if err := s.repo.Create(ctx, video); err != nil {
		s.scheduleCleanup(ctx, video.ID, ReasonPublishAborted, uploaded)
		return nil, fmt.Errorf("create video: %w", err)
	}

	return video, nil
}

func (s *videoService) GetVideo(ctx context.Context, videoID, viewer uuid.UUID) (*model.VideoDetail, error) {
	detail, err := s.repo.GetDetail(ctx, videoID, viewer)
	if err != nil {
		return nil, err
	}
	if !detail.VisibleTo(viewer) {
		return nil, repository.ErrVideoNotFound
	}

	if err := s.repo.IncrementViews(ctx, videoID); err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}
	detail.Views++

	if viewer != uuid.Nil {
		if err := s.repo.RecordWatch(ctx, viewer, videoID); err != nil {
			slog.WarnContext(ctx, "failed to record watch history",
				"video_id", videoID,
				"user_id", viewer,
				"error", err,
			)
		}
	}

	return detail, nil
}

func (s *videoService) UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error) {
	if err := requireViewer(input.Viewer); err != nil {
		return nil, err
	}
	title, description, err := model.ValidateVideoDetails(input.Title, input.Description)
	if err != nil {
		return nil, err
	}

	return authz.Guard(ctx, input.Viewer, authz.UpdateVideo,
		func(ctx context.Context) (*model.Video, error) {
			return s.repo.GetByID(ctx, input.VideoID)
		},
		func(ctx context.Context, video *model.Video) (*model.Video, error) {
			oldThumbnail := video.Thumbnail

			var newKey string
			if input.ThumbnailPath != "" {
				thumb, err := s.uploader.Upload(ctx, input.ThumbnailPath, repository.AssetThumbnail)
				if err != nil {
					return nil, fmt.Errorf("upload thumbnail: %w", err)
				}
				newKey = thumb.Key
				video.Thumbnail = thumb.URL
			}

			video.Title = title
			video.Description = description
			video.UpdatedAt = time.Now()

			affected := s.playlists.PlaylistsWithVideo(ctx, video.ID)
			if err := s.repo.Update(ctx, video); err != nil {
				if newKey != "" {
					s.scheduleCleanup(ctx, video.ID, ReasonUpdateAborted, []string{newKey})
				}
				return nil, fmt.Errorf("update video: %w", err)
			}
			s.playlists.Evict(ctx, affected)

			if newKey != "" {
				s.scheduleCleanup(ctx, video.ID, ReasonThumbnailReplaced, s.keysOf(oldThumbnail))
			}
			return video, nil
		},
	)
}

func (s *videoService) DeleteVideo(ctx context.Context, videoID, viewer uuid.UUID) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}

	_, err := authz.Guard(ctx, viewer, authz.DeleteVideo,
		func(ctx context.Context) (*model.Video, error) {
			return s.repo.GetByID(ctx, videoID)
		},
		func(ctx context.Context, video *model.Video) (struct{}, error) {
			affected := s.playlists.PlaylistsWithVideo(ctx, video.ID)
			if err := s.repo.Delete(ctx, video.ID); err != nil {
				return struct{}{}, fmt.Errorf("delete video: %w", err)
			}
			s.playlists.Evict(ctx, affected)
			s.scheduleCleanup(ctx, video.ID, ReasonVideoDeleted, s.keysOf(video.VideoFile, video.Thumbnail))
			return struct{}{}, nil
		},
	)
	return err
}

func (s *videoService) TogglePublishStatus(ctx context.Context, videoID, viewer uuid.UUID) (*model.Video, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	return authz.Guard(ctx, viewer, authz.TogglePublish,
		func(ctx context.Context) (*model.Video, error) {
			return s.repo.GetByID(ctx, videoID)
		},
		func(ctx context.Context, video *model.Video) (*model.Video, error) {
			want := video.TogglePublish()

			affected := s.playlists.PlaylistsWithVideo(ctx, video.ID)
			stored, err := s.repo.TogglePublish(ctx, video.ID)
			if err != nil {
				return nil, fmt.Errorf("toggle publish: %w", err)
			}
			s.playlists.Evict(ctx, affected)

			// The store flips whatever it holds, so a concurrent toggle ends
			// in the opposite state.
			if got := stored.State(); got != want {
				slog.WarnContext(ctx, "publish state changed concurrently",
					"video_id", video.ID,
					"want", want,
					"got", got,
				)
			}
			return stored, nil
		},
	)
}

// keysOf maps asset URLs back to object keys, skipping empty and foreign URLs.
func (s *videoService) keysOf(urls ...string) []string {
	var keys []string
	for _, u := range urls {
		if u == "" {
			continue
		}
		if key, ok := s.uploader.KeyFromURL(u); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// scheduleCleanup hands orphaned objects to the worker. Publish failures are
// logged and swallowed.
func (s *videoService) scheduleCleanup(ctx context.Context, videoID uuid.UUID, reason string, keys []string) {
	if len(keys) == 0 {
		return
	}

	task := repository.AssetCleanupTask{
		VideoID: videoID,
		Keys:    keys,
		Reason:  reason,
	}
	if err := s.queue.PublishCleanupTask(ctx, task); err != nil {
		slog.WarnContext(ctx, "failed to schedule asset cleanup",
			"video_id", videoID,
			"reason", reason,
			"keys", keys,
			"error", err,
		)
	}
}
