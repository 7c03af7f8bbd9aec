package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dhatukala/dhatukala/internal/server"
)

type contextKey string

const claimsKey contextKey = "auth.claims"

// ClaimsFrom returns the session claims attached by RequireAuth, or nil
// when the request was not authenticated.
func ClaimsFrom(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// RequireAuth rejects requests without a valid session token. The token is
// read from the session cookie, falling back to an Authorization bearer
// header for non-browser clients.
func (m *Module) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			server.Unauthorized(w, "authentication required", r.URL.Path)
			return
		}
		claims, err := m.parseToken(raw)
		if err != nil {
			server.Unauthorized(w, "invalid or expired session", r.URL.Path)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is RequireAuth plus an admin role check.
func (m *Module) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())
		if claims == nil || claims.Role != "admin" {
			server.Forbidden(w, "admin role required", r.URL.Path)
			return
		}
		next(w, r)
	})
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}
