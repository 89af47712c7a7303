package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/skylens/flightpulse/internal/domain"
	"github.com/skylens/flightpulse/internal/pkg/httputil"
)

// GetTopAirlines handles GET /api/airlines/top?limit=N.
func (h *Handlers) GetTopAirlines(w http.ResponseWriter, r *http.Request) {
	limit := 3
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ratings, err := h.airlines.TopRated(r.Context(), limit)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if ratings == nil {
		ratings = []domain.AirlineRating{}
	}
	httputil.OK(w, ratings)
}

// GetAirlineDelayStats handles GET /api/airlines/{iata}/delay-stats.
func (h *Handlers) GetAirlineDelayStats(w http.ResponseWriter, r *http.Request) {
	iata := chi.URLParam(r, "iata")

	stats, err := h.airlines.DelayStats(r.Context(), iata)
	if err != nil {
		notFoundOr(w, err, "airline not found")
		return
	}
	if stats == nil {
		stats = []domain.DelayBucket{}
	}
	httputil.OK(w, stats)
}

// SearchAirports handles GET /api/airports?city=&country=.
func (h *Handlers) SearchAirports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	airports, err := h.airports.Search(r.Context(), q.Get("city"), q.Get("country"))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if airports == nil {
		airports = []domain.Airport{}
	}
	httputil.OK(w, airports)
}

// GetAirportStats handles GET /api/airports/{iata}/stats.
func (h *Handlers) GetAirportStats(w http.ResponseWriter, r *http.Request) {
	iata := chi.URLParam(r, "iata")

	stats, err := h.airports.Stats(r.Context(), iata)
	if err != nil {
		notFoundOr(w, err, "airport not found")
		return
	}
	httputil.OK(w, stats)
}
