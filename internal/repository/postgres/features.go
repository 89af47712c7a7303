package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skylens/flightpulse/internal/domain"
)

// FeatureRepo loads the flight_features relation for the mining job. It is
// the storage side of analysis.FeatureSource.
type FeatureRepo struct{ db *sql.DB }

// NewFeatureRepo creates a Postgres-backed feature repository.
func NewFeatureRepo(db *sql.DB) *FeatureRepo { return &FeatureRepo{db: db} }

// ListFeatures reads the full flight_features relation. Each run takes a
// complete snapshot; the table is small relative to flights (one row per
// classified flight) and the miner needs exact global supports.
func (r *FeatureRepo) ListFeatures(ctx context.Context) ([]domain.FeatureRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT flight_id,
		       COALESCE(day_of_week, ''), COALESCE(time_of_day, ''), COALESCE(season, ''),
		       COALESCE(departure_airport, ''), COALESCE(arrival_airport, ''),
		       COALESCE(airline_code, ''), COALESCE(delay_category, '')
		FROM flight_features
		ORDER BY flight_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list flight features: %w", err)
	}
	defer rows.Close()

	var out []domain.FeatureRecord
	for rows.Next() {
		var rec domain.FeatureRecord
		var category string
		if err := rows.Scan(
			&rec.FlightID,
			&rec.DayOfWeek, &rec.TimeOfDay, &rec.Season,
			&rec.DepartureAirport, &rec.ArrivalAirport,
			&rec.AirlineCode, &category,
		); err != nil {
			return nil, fmt.Errorf("scan flight feature: %w", err)
		}
		rec.DelayCategory = domain.DelayCategory(category)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountFeatures returns the number of feature rows, used by the health
// endpoint to expose dataset size.
func (r *FeatureRepo) CountFeatures(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flight_features`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count flight features: %w", err)
	}
	return n, nil
}
