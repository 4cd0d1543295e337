package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/hszk-dev/vidvault/internal/api/handler"
)

// Recoverer turns a panicking handler into a 500 response in the standard
// envelope.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logger.ErrorContext(r.Context(), "panic recovered",
						slog.String("request_id", GetRequestID(r.Context())),
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
					)

					handler.Error(w, http.StatusInternalServerError, handler.CodeInternal, "An unexpected error occurred")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
