package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/usecase"
	"github.com/hszk-dev/vidvault/internal/viewer"
)

// Request/Response types

type PlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PlaylistResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"ownerId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// PlaylistHandler handles playlist-related HTTP requests.
type PlaylistHandler struct {
	svc usecase.PlaylistService
}

// NewPlaylistHandler creates a new PlaylistHandler.
func NewPlaylistHandler(svc usecase.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{svc: svc}
}

// Create handles POST /playlists
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid JSON body")
		return
	}

	playlist, err := h.svc.CreatePlaylist(r.Context(), usecase.CreatePlaylistInput{
		OwnerID:     viewer.ID(r.Context()),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusCreated, toPlaylistResponse(playlist), "Playlist created successfully")
}

// Get handles GET /playlists/{playlistId}
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	playlist, err := h.svc.GetPlaylist(r.Context(), playlistID)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, playlist, "Playlist fetched successfully")
}

// ListByUser handles GET /playlists/user/{userId}
func (h *PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "userId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	playlists, err := h.svc.ListUserPlaylists(r.Context(), ownerID, viewer.ID(r.Context()), page)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, playlists, "Playlists fetched successfully")
}

// Update handles PATCH /playlists/{playlistId}
func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	var req PlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid JSON body")
		return
	}

	playlist, err := h.svc.UpdatePlaylist(r.Context(), usecase.UpdatePlaylistInput{
		PlaylistID:  playlistID,
		Viewer:      viewer.ID(r.Context()),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, toPlaylistResponse(playlist), "Playlist updated successfully")
}

// Delete handles DELETE /playlists/{playlistId}
func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	if err := h.svc.DeletePlaylist(r.Context(), playlistID, viewer.ID(r.Context())); err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, struct{}{}, "Playlist deleted successfully")
}

// AddVideo handles PATCH /playlists/add/{videoId}/{playlistId}
func (h *PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.svc.AddVideo, "Video added to playlist")
}

// RemoveVideo handles PATCH /playlists/remove/{videoId}/{playlistId}
func (h *PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.svc.RemoveVideo, "Video removed from playlist")
}

func (h *PlaylistHandler) changeMembership(
	w http.ResponseWriter,
	r *http.Request,
	change func(ctx context.Context, playlistID, videoID, viewerID uuid.UUID) error,
	message string,
) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	if err := change(r.Context(), playlistID, videoID, viewer.ID(r.Context())); err != nil {
		ServiceError(w, r, err)
		return
	}

	Success(w, http.StatusOK, struct{}{}, message)
}

func toPlaylistResponse(p *model.Playlist) PlaylistResponse {
	return PlaylistResponse{
		ID:          p.ID.String(),
		OwnerID:     p.OwnerID.String(),
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}
