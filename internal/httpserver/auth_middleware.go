package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/pdlsagar677/Social-Media/internal/security"
)

type contextKey string

const userContextKey contextKey = "currentUserID"

// WithUserID returns a new context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

// CurrentUserID extracts the authenticated user id from context, if any.
func CurrentUserID(r *http.Request) string {
	id, _ := r.Context().Value(userContextKey).(string)
	return id
}

func unauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Message: "User not authenticated"})
}

// AuthMiddleware accepts the session cookie or a Bearer token and attaches
// the user id to the request context.
func AuthMiddleware(tokens *security.TokenService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string
			if c, err := r.Cookie(cookieName); err == nil {
				tokenStr = c.Value
			}
			if authHeader := r.Header.Get("Authorization"); tokenStr == "" && strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				tokenStr = strings.TrimSpace(authHeader[len("Bearer "):])
			}
			if tokenStr == "" {
				unauthenticated(w)
				return
			}

			userID, err := tokens.UserID(tokenStr)
			if err != nil {
				unauthenticated(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
