package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hszk-dev/vidvault/internal/domain/model"
)

// Response is the envelope of every API response.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Error codes.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeInternal        = "internal_error"
)

// JSON writes data as the response body with the given status. A nil data
// writes headers only.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Success writes data inside a successful envelope.
func Success(w http.ResponseWriter, status int, data any, message string) {
	JSON(w, status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// Error writes a failed envelope with no data.
func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, Response{
		StatusCode: status,
		Message:    message,
		Error:      code,
	})
}

// ServiceError maps an error from the usecase layer to a status code.
// Errors outside the model taxonomy are upstream failures and are logged;
// their message is not exposed.
func ServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		Error(w, http.StatusBadRequest, CodeInvalidArgument, err.Error())
	case errors.Is(err, model.ErrUnauthenticated):
		Error(w, http.StatusUnauthorized, CodeUnauthenticated, err.Error())
	case errors.Is(err, model.ErrForbidden):
		Error(w, http.StatusForbidden, CodeForbidden, "You are not allowed to modify this resource")
	case errors.Is(err, model.ErrNotFound):
		Error(w, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		Error(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	}
}
