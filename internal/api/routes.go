package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/skylens/flightpulse/internal/auth"
)

// SetupRoutes configures all API routes. Public query endpoints carry no
// auth; uploads require an airline bearer token; token management requires
// the admin secret.
func SetupRoutes(h *Handlers, authManager *auth.Manager) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Admin-Secret"},
		MaxAge:         300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Public punctuality queries
		r.Get("/airlines/top", h.GetTopAirlines)
		r.Get("/airlines/{iata}/delay-stats", h.GetAirlineDelayStats)
		r.Get("/airports", h.SearchAirports)
		r.Get("/airports/{iata}/stats", h.GetAirportStats)
		r.Get("/flights", h.SearchFlights)
		r.Get("/flights/{id}", h.GetFlight)

		// Delay-rule mining: reads come from the persisted result, the
		// refresh endpoint hands off to the background runner.
		r.Route("/delay-rules", func(r chi.Router) {
			r.Post("/refresh", h.TriggerDelayRules)
			r.Get("/status", h.GetDelayRuleStatus)
			r.Get("/top", h.GetTopDelayRules)
		})

		// Precomputed reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/directions", h.GetDirectionReport)
			r.Get("/airlines", h.GetAirlineReport)
		})

		// Airline uploads (bearer token)
		r.Group(func(r chi.Router) {
			r.Use(authManager.RequireAirline)
			r.Post("/upload", h.UploadFlights)
		})

		// Token management (admin secret)
		r.Route("/admin", func(r chi.Router) {
			r.Use(authManager.RequireAdmin)
			r.Post("/tokens/{airline}", h.GenerateToken)
			r.Post("/tokens/{token}/deactivate", h.DeactivateToken)
		})
	})

	return r
}
