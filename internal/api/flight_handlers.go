package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skylens/flightpulse/internal/domain"
	"github.com/skylens/flightpulse/internal/pkg/httputil"
	"github.com/skylens/flightpulse/internal/repository/postgres"
)

// SearchFlights handles GET /api/flights with optional filters.
func (h *Handlers) SearchFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := postgres.FlightFilter{
		Airline:          q.Get("airline"),
		DepartureAirport: q.Get("departure_airport"),
		ArrivalAirport:   q.Get("arrival_airport"),
	}

	if v := q.Get("date_from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.BadRequest(w, "date_from must be YYYY-MM-DD")
			return
		}
		filter.DateFrom = &d
	}
	if v := q.Get("date_to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.BadRequest(w, "date_to must be YYYY-MM-DD")
			return
		}
		filter.DateTo = &d
	}
	if v := q.Get("min_delay"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.BadRequest(w, "min_delay must be an integer (seconds)")
			return
		}
		filter.MinDelaySeconds = &n
	}
	if v := q.Get("max_delay"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.BadRequest(w, "max_delay must be an integer (seconds)")
			return
		}
		filter.MaxDelaySeconds = &n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	flights, err := h.flights.Search(r.Context(), filter)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if flights == nil {
		flights = []domain.FlightSummary{}
	}
	httputil.OK(w, flights)
}

// GetFlight handles GET /api/flights/{id}.
func (h *Handlers) GetFlight(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "flight id must be an integer")
		return
	}

	detail, err := h.flights.Get(r.Context(), id)
	if err != nil {
		notFoundOr(w, err, "flight not found")
		return
	}
	httputil.OK(w, detail)
}
