package api

import (
	"errors"
	"net/http"

	"github.com/skylens/flightpulse/internal/pkg/httputil"
	"github.com/skylens/flightpulse/internal/reports"
)

// GetDirectionReport handles GET /api/reports/directions.
func (h *Handlers) GetDirectionReport(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, reports.ReportDirections)
}

// GetAirlineReport handles GET /api/reports/airlines.
func (h *Handlers) GetAirlineReport(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, reports.ReportAirlines)
}

// serveReport writes the precomputed JSON payload verbatim; the report is
// already serialized at generation time.
func (h *Handlers) serveReport(w http.ResponseWriter, r *http.Request, name string) {
	if h.reports == nil {
		httputil.NotFound(w, "reports are disabled")
		return
	}
	data, err := h.reports.Load(r.Context(), name)
	if errors.Is(err, reports.ErrNotReady) {
		httputil.NotFound(w, "report not generated yet")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
