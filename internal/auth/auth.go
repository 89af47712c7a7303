// Package auth implements upload authentication: per-airline bearer tokens
// resolved against the tokens table, and an admin shared secret gating
// token management.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/skylens/flightpulse/internal/pkg/httputil"
	"github.com/skylens/flightpulse/internal/repository/postgres"
)

type contextKey string

const airlineKey contextKey = "airline"

// TokenSource resolves an active upload token to an airline code.
type TokenSource interface {
	AirlineForToken(ctx context.Context, token string) (string, error)
}

// Manager carries the token source and admin secret for the middleware.
type Manager struct {
	tokens      TokenSource
	adminSecret string
}

// NewManager creates an auth manager.
func NewManager(tokens TokenSource, adminSecret string) *Manager {
	return &Manager{tokens: tokens, adminSecret: adminSecret}
}

// NewToken generates a 48-byte URL-safe random upload token.
func NewToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// AirlineFromContext returns the airline code set by RequireAirline.
func AirlineFromContext(ctx context.Context) (string, bool) {
	airline, ok := ctx.Value(airlineKey).(string)
	return airline, ok
}

// RequireAirline is middleware that authenticates the request via
// "Authorization: Bearer <token>" and stores the airline code in the
// request context. 401 on a missing/malformed header, 403 on an unknown
// or deactivated token.
func (m *Manager) RequireAirline(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httputil.Unauthorized(w, "missing or invalid authorization header")
			return
		}

		airline, err := m.tokens.AirlineForToken(r.Context(), token)
		if errors.Is(err, postgres.ErrNotFound) {
			httputil.Forbidden(w, "invalid or inactive token")
			return
		}
		if err != nil {
			httputil.InternalError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), airlineKey, airline)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin is middleware that gates token management behind the
// X-Admin-Secret header.
func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("X-Admin-Secret")
		if m.adminSecret == "" ||
			subtle.ConstantTimeCompare([]byte(got), []byte(m.adminSecret)) != 1 {
			httputil.Forbidden(w, "invalid admin credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}
