package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/vidvault/internal/usecase"
	"github.com/hszk-dev/vidvault/internal/viewer"
)

// ChannelHandler serves channel discovery and profiles.
type ChannelHandler struct {
	svc usecase.ChannelService
}

// NewChannelHandler creates a new ChannelHandler.
func NewChannelHandler(svc usecase.ChannelService) *ChannelHandler {
	return &ChannelHandler{svc: svc}
}

// Discover handles GET /discover/channels?search=&sort=&page=&limit=
func (h *ChannelHandler) Discover(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	channels, err := h.svc.DiscoverChannels(r.Context(), usecase.DiscoverChannelsInput{
		Viewer: viewer.ID(r.Context()),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Page:   page,
	})
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, channels, "Channels fetched successfully")
}

// Profile handles GET /users/c/{username}
func (h *ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetChannelProfile(r.Context(), chi.URLParam(r, "username"), viewer.ID(r.Context()))
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, profile, "Channel profile fetched successfully")
}
