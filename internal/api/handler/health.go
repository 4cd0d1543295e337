package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status   string  `json:"status"`
	Database string  `json:"database"`
	Uptime   float64 `json:"uptime"`
}

// HealthHandler reports process and database health.
type HealthHandler struct {
	db        Pinger
	startedAt time.Time
	timeout   time.Duration
}

// NewHealthHandler creates a HealthHandler; uptime counts from now.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startedAt: time.Now(),
		timeout:   2 * time.Second,
	}
}

// Check handles GET /healthcheck
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Database: "connected",
		Uptime:   time.Since(h.startedAt).Seconds(),
	}

	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		JSON(w, http.StatusInternalServerError, Response{
			StatusCode: http.StatusInternalServerError,
			Data:       resp,
			Message:    "Database is unreachable",
			Error:      CodeInternal,
		})
		return
	}

	Success(w, http.StatusOK, resp, "Service is healthy")
}
