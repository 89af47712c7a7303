package api

import (
	"context"
	"net/http"
	"time"

	"github.com/skylens/flightpulse/internal/auth"
)

// Server wraps the HTTP server around the configured router.
type Server struct {
	handler  http.Handler
	handlers *Handlers
	server   *http.Server
}

// NewServer creates the API server from wired handlers and the auth manager.
func NewServer(handlers *Handlers, authManager *auth.Manager) *Server {
	return &Server{
		handler:  SetupRoutes(handlers, authManager),
		handlers: handlers,
	}
}

// ListenAndServe starts the HTTP server on addr and blocks until it stops.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Upload batches are small JSON arrays, so tight timeouts are safe.
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
