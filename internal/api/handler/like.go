package handler

import (
	"net/http"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/usecase"
	"github.com/hszk-dev/vidvault/internal/viewer"
)

// LikeHandler handles like toggles and the liked-videos listing.
type LikeHandler struct {
	svc usecase.LikeService
}

// NewLikeHandler creates a new LikeHandler.
func NewLikeHandler(svc usecase.LikeService) *LikeHandler {
	return &LikeHandler{svc: svc}
}

// ToggleVideo handles POST /likes/toggle/v/{videoId}
func (h *LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, model.TargetVideo, "videoId")
}

// ToggleComment handles POST /likes/toggle/c/{commentId}
func (h *LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, model.TargetComment, "commentId")
}

// ToggleTweet handles POST /likes/toggle/t/{tweetId}
func (h *LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, model.TargetTweet, "tweetId")
}

func (h *LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target model.LikeTarget, param string) {
	targetID, err := pathID(r, param)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	result, err := h.svc.ToggleLike(r.Context(), target, targetID, viewer.ID(r.Context()))
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	message := "Like removed successfully"
	if result.IsLiked {
		message = "Liked successfully"
	}
	Success(w, http.StatusOK, result, message)
}

// LikedVideos handles GET /likes/videos
func (h *LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	videos, err := h.svc.ListLikedVideos(r.Context(), viewer.ID(r.Context()), page)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, videos, "Liked videos fetched successfully")
}
