package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skylens/flightpulse/internal/auth"
	"github.com/skylens/flightpulse/internal/domain"
	"github.com/skylens/flightpulse/internal/pkg/httputil"
	"github.com/skylens/flightpulse/internal/pkg/logger"
)

// uploadError reports one rejected flight from an upload batch.
type uploadError struct {
	Flight string `json:"flight"`
	Error  string `json:"error"`
}

// uploadResponse summarizes an upload batch. Status is "success" when every
// flight was stored, "partial" otherwise.
type uploadResponse struct {
	Status    string        `json:"status"`
	Processed int           `json:"processed"`
	Errors    []uploadError `json:"errors"`
}

// UploadFlights handles POST /api/upload for an authenticated airline.
// Each flight is validated and stored independently; one bad entry does
// not reject the batch.
func (h *Handlers) UploadFlights(w http.ResponseWriter, r *http.Request) {
	airline, ok := auth.AirlineFromContext(r.Context())
	if !ok {
		httputil.Unauthorized(w, "missing airline identity")
		return
	}

	var uploads []domain.FlightUpload
	if !httputil.Decode(w, r, &uploads) {
		return
	}
	if len(uploads) == 0 {
		httputil.BadRequest(w, "upload batch is empty")
		return
	}

	resp := uploadResponse{Errors: []uploadError{}}
	for _, u := range uploads {
		if err := u.Validate(); err != nil {
			resp.Errors = append(resp.Errors, uploadError{Flight: u.Number, Error: err.Error()})
			continue
		}
		if err := h.flights.Upsert(r.Context(), airline, u); err != nil {
			logger.Error("flight upsert failed", "airline", airline, "flight", u.Number, "error", err)
			resp.Errors = append(resp.Errors, uploadError{Flight: u.Number, Error: "storage error"})
			continue
		}
		resp.Processed++
	}

	resp.Status = "success"
	if len(resp.Errors) > 0 {
		resp.Status = "partial"
	}
	logger.Info("flight upload processed",
		"airline", airline, "processed", resp.Processed, "errors", len(resp.Errors))
	httputil.OK(w, resp)
}

// GenerateToken handles POST /api/admin/tokens/{airline} (admin only).
func (h *Handlers) GenerateToken(w http.ResponseWriter, r *http.Request) {
	airline := chi.URLParam(r, "airline")

	known, err := h.airlines.Exists(r.Context(), airline)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if !known {
		httputil.NotFound(w, "airline not found")
		return
	}

	token, err := auth.NewToken()
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if err := h.tokens.Create(r.Context(), token, airline); err != nil {
		httputil.InternalError(w, fmt.Errorf("store token: %w", err))
		return
	}

	logger.Info("upload token issued", "airline", airline, "token", token)
	httputil.OK(w, map[string]string{"token": token, "airline": airline})
}

// DeactivateToken handles POST /api/admin/tokens/{token}/deactivate
// (admin only).
func (h *Handlers) DeactivateToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.tokens.Deactivate(r.Context(), token); err != nil {
		notFoundOr(w, err, "token not found")
		return
	}
	logger.Info("upload token deactivated", "token", token)
	httputil.OK(w, map[string]string{"status": "deactivated"})
}
