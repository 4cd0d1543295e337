package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/api/handler"
	"github.com/hszk-dev/vidvault/internal/viewer"
)

// AccessTokenCookie is the cookie checked when no Authorization header is sent.
const AccessTokenCookie = "accessToken"

var errNoToken = errors.New("no access token")

// Authenticator resolves the viewer of a request from an HS256 access token
// whose subject is the user ID.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

// NewAuthenticator creates an Authenticator verifying tokens with secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Optional attaches the viewer to the request context when a valid token is
// present. Requests without a token, or with an invalid one, continue as
// anonymous.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.authenticate(r)
		if err != nil {
			if !errors.Is(err, errNoToken) {
				slog.DebugContext(r.Context(), "ignoring invalid access token",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("error", err.Error()),
				)
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(viewer.WithID(r.Context(), id)))
	})
}

// Required rejects requests without an authenticated viewer. It must run
// after Optional.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := viewer.FromContext(r.Context()); !ok {
			handler.Error(w, http.StatusUnauthorized, handler.CodeUnauthenticated, "Unauthorized request")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) authenticate(r *http.Request) (uuid.UUID, error) {
	raw := bearerToken(r)
	if raw == "" {
		return uuid.Nil, errNoToken
	}

	var claims jwt.RegisteredClaims
	_, err := a.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return id, nil
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}
