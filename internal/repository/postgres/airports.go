package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skylens/flightpulse/internal/domain"
)

// AirportRepo implements airport lookups against PostgreSQL.
type AirportRepo struct{ db *sql.DB }

// NewAirportRepo creates a Postgres-backed airport repository.
func NewAirportRepo(db *sql.DB) *AirportRepo { return &AirportRepo{db: db} }

// Search returns airports filtered by optional city and country substrings
// (case-insensitive).
func (r *AirportRepo) Search(ctx context.Context, city, country string) ([]domain.Airport, error) {
	q := `
		SELECT iata_code, airport_name, city, country, timezone, longitude, latitude
		FROM airports
		WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if city != "" {
		q += fmt.Sprintf(" AND LOWER(city) LIKE LOWER($%d)", idx)
		args = append(args, "%"+city+"%")
		idx++
	}
	if country != "" {
		q += fmt.Sprintf(" AND LOWER(country) LIKE LOWER($%d)", idx)
		args = append(args, "%"+country+"%")
		idx++
	}
	q += " ORDER BY iata_code"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search airports: %w", err)
	}
	defer rows.Close()

	var out []domain.Airport
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.IATACode, &a.Name, &a.City, &a.Country, &a.Timezone, &a.Longitude, &a.Latitude); err != nil {
			return nil, fmt.Errorf("scan airport: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Stats aggregates traffic and data-quality counters for one airport.
// Returns ErrNotFound for an unknown IATA code.
func (r *AirportRepo) Stats(ctx context.Context, iata string) (*domain.AirportStats, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM airports WHERE iata_code = $1`, iata).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check airport: %w", err)
	}

	s := &domain.AirportStats{IATACode: iata}
	err = r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM flights WHERE departure_airport = $1) AS departures,
			(SELECT COUNT(*) FROM flights WHERE arrival_airport = $1) AS arrivals,
			(SELECT COUNT(*) FROM flights WHERE departure_airport = $1 AND fact_departure IS NULL) AS missing_departures,
			(SELECT COUNT(*) FROM flights WHERE arrival_airport = $1 AND fact_arrival IS NULL) AS missing_arrivals,
			(SELECT COUNT(*) FROM flight_features
			 WHERE departure_airport = $1 OR arrival_airport = $1) AS features_recorded
	`, iata).Scan(&s.Departures, &s.Arrivals, &s.MissingDeparture, &s.MissingArrival, &s.FeaturesRecorded)
	if err != nil {
		return nil, fmt.Errorf("airport stats: %w", err)
	}
	return s, nil
}
