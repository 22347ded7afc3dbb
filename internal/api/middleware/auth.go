package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/matchboard/internal/model"
)

type contextKey string

const playerIDContextKey contextKey = "player_id"

// TokenResolver maps a login token to its player
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (model.PlayerID, error)
}

// OptionalAuth resolves a bearer token if present but doesn't require it.
// Unknown tokens are ignored; actions that need a player report that themselves.
func OptionalAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if id, err := resolver.Resolve(r.Context(), token); err == nil {
					r = r.WithContext(WithPlayerID(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the login token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// WithPlayerID returns a context carrying the authenticated player id
func WithPlayerID(ctx context.Context, id model.PlayerID) context.Context {
	return context.WithValue(ctx, playerIDContextKey, id)
}

// GetPlayerID returns the authenticated player id, or 0
func GetPlayerID(ctx context.Context) model.PlayerID {
	id, _ := ctx.Value(playerIDContextKey).(model.PlayerID)
	return id
}

// HasPlayerID reports whether the request carried a valid bearer token
func HasPlayerID(ctx context.Context) bool {
	_, ok := ctx.Value(playerIDContextKey).(model.PlayerID)
	return ok
}
