// Package api exposes the HTTP surface: public punctuality queries, the
// delay-rule endpoints, precomputed reports, airline uploads and admin
// token management. Handlers validate input, call a repository or the
// analysis runner, and translate sentinel errors to status codes; no
// business logic lives here.
package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/skylens/flightpulse/internal/analysis"
	"github.com/skylens/flightpulse/internal/domain"
	"github.com/skylens/flightpulse/internal/pkg/httputil"
	"github.com/skylens/flightpulse/internal/repository/postgres"
)

// FlightStore is the flight query surface the handlers need.
type FlightStore interface {
	Search(ctx context.Context, f postgres.FlightFilter) ([]domain.FlightSummary, error)
	Get(ctx context.Context, id int64) (*domain.FlightDetail, error)
	Upsert(ctx context.Context, airline string, u domain.FlightUpload) error
}

// AirlineStore is the airline query surface the handlers need.
type AirlineStore interface {
	TopRated(ctx context.Context, limit int) ([]domain.AirlineRating, error)
	DelayStats(ctx context.Context, iata string) ([]domain.DelayBucket, error)
	Exists(ctx context.Context, iata string) (bool, error)
}

// AirportStore is the airport query surface the handlers need.
type AirportStore interface {
	Search(ctx context.Context, city, country string) ([]domain.Airport, error)
	Stats(ctx context.Context, iata string) (*domain.AirportStats, error)
}

// TokenStore is the token management surface the admin handlers need.
type TokenStore interface {
	Create(ctx context.Context, token, airline string) error
	Deactivate(ctx context.Context, token string) error
}

// FeatureCounter reports the size of the mining dataset.
type FeatureCounter interface {
	CountFeatures(ctx context.Context) (int, error)
}

// RuleReader reads the persisted delay-rule result.
type RuleReader interface {
	Top(n int) ([]domain.DelayRule, error)
}

// AnalysisTrigger starts mining passes and reports their state.
type AnalysisTrigger interface {
	Trigger() error
	Status() domain.AnalysisRun
}

// ReportLoader serves precomputed report payloads.
type ReportLoader interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// Handlers carries the dependencies of all HTTP handlers.
type Handlers struct {
	db       *sql.DB
	flights  FlightStore
	airlines AirlineStore
	airports AirportStore
	tokens   TokenStore
	features FeatureCounter
	rules    RuleReader
	runner   AnalysisTrigger
	reports  ReportLoader
	started  time.Time
}

// NewHandlers wires the handler set.
func NewHandlers(
	db *sql.DB,
	flights FlightStore,
	airlines AirlineStore,
	airports AirportStore,
	tokens TokenStore,
	features FeatureCounter,
	rules RuleReader,
	runner AnalysisTrigger,
	reports ReportLoader,
) *Handlers {
	return &Handlers{
		db:       db,
		flights:  flights,
		airlines: airlines,
		airports: airports,
		tokens:   tokens,
		features: features,
		rules:    rules,
		runner:   runner,
		reports:  reports,
		started:  time.Now(),
	}
}

// HealthCheck reports service liveness, database reachability and the
// mining job state.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"analysis":       h.runner.Status(),
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
		} else {
			resp["database"] = "ok"
			if h.features != nil {
				if n, err := h.features.CountFeatures(ctx); err == nil {
					resp["feature_rows"] = n
				}
			}
		}
	}
	httputil.OK(w, resp)
}

// notFoundOr maps the repository sentinel to a 404, everything else to a 500.
func notFoundOr(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, postgres.ErrNotFound) {
		httputil.NotFound(w, message)
		return
	}
	httputil.InternalError(w, err)
}

var _ RuleReader = (*analysis.RuleStore)(nil)
var _ AnalysisTrigger = (*analysis.Runner)(nil)
