package handler

import (
	"net/http"
	"time"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/usecase"
	"github.com/hszk-dev/vidvault/internal/viewer"
)

// Multipart field names.
const (
	fieldVideoFile = "videoFile"
	fieldThumbnail = "thumbnail"
)

// VideoResponse is a video as returned by mutations.
type VideoResponse struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"ownerId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	VideoFile   string  `json:"videoFile"`
	Thumbnail   string  `json:"thumbnail"`
	Duration    float64 `json:"duration"`
	Views       int64   `json:"views"`
	IsPublished bool    `json:"isPublished"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// VideoHandler handles video-related HTTP requests.
type VideoHandler struct {
	svc     usecase.VideoService
	uploads *UploadReceiver
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(svc usecase.VideoService, uploads *UploadReceiver) *VideoHandler {
	return &VideoHandler{svc: svc, uploads: uploads}
}

// List handles GET /videos
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	ownerID, err := optionalQueryID(r, "userId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	videos, err := h.svc.ListVideos(r.Context(), usecase.ListVideosInput{
		Viewer:   viewer.ID(r.Context()),
		OwnerID:  ownerID,
		Search:   q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
		Page:     page,
	})
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, videos, "Videos fetched successfully")
}

// Publish handles POST /videos as multipart/form-data with the fields
// videoFile, thumbnail, title, description and optionally isPublished.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	rc, err := h.uploads.Receive(w, r, fieldVideoFile, fieldThumbnail)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	defer rc.Cleanup()

	video, err := h.svc.PublishVideo(r.Context(), usecase.PublishVideoInput{
		OwnerID:       viewer.ID(r.Context()),
		Title:         rc.Value("title"),
		Description:   rc.Value("description"),
		VideoPath:     rc.File(fieldVideoFile),
		ThumbnailPath: rc.File(fieldThumbnail),
		Draft:         rc.Value("isPublished") == "false",
	})
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusCreated, toVideoResponse(video), "Video published successfully")
}

// Get handles GET /videos/{videoId}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	video, err := h.svc.GetVideo(r.Context(), videoID, viewer.ID(r.Context()))
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, video, "Video fetched successfully")
}

// Update handles PATCH /videos/{videoId} as multipart/form-data with the
// fields title, description and an optional thumbnail.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	rc, err := h.uploads.Receive(w, r, fieldThumbnail)
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	defer rc.Cleanup()

	video, err := h.svc.UpdateVideo(r.Context(), usecase.UpdateVideoInput{
		VideoID:       videoID,
		Viewer:        viewer.ID(r.Context()),
		Title:         rc.Value("title"),
		Description:   rc.Value("description"),
		ThumbnailPath: rc.File(fieldThumbnail),
	})
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, toVideoResponse(video), "Video updated successfully")
}

// Delete handles DELETE /videos/{videoId}
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	if err := h.svc.DeleteVideo(r.Context(), videoID, viewer.ID(r.Context())); err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, struct{}{}, "Video deleted successfully")
}

// TogglePublish handles PATCH /videos/toggle/publish/{videoId}
func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	video, err := h.svc.TogglePublishStatus(r.Context(), videoID, viewer.ID(r.Context()))
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, toVideoResponse(video), "Publish status toggled successfully")
}

func toVideoResponse(v *model.Video) VideoResponse {
	return VideoResponse{
		ID:          v.ID.String(),
		OwnerID:     v.OwnerID.String(),
		Title:       v.Title,
		Description: v.Description,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   v.UpdatedAt.Format(time.RFC3339),
	}
}
