package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skylens/flightpulse/internal/domain"
)

// AirlineRepo implements airline rating and delay queries against PostgreSQL.
type AirlineRepo struct{ db *sql.DB }

// NewAirlineRepo creates a Postgres-backed airline repository.
func NewAirlineRepo(db *sql.DB) *AirlineRepo { return &AirlineRepo{db: db} }

// TopRated returns the latest punctuality rating per airline, best
// departure rating first.
func (r *AirlineRepo) TopRated(ctx context.Context, limit int) ([]domain.AirlineRating, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT ar.airline_iata_code, al.name, ar.rating_departure, ar.rating_arrival, ar.created_at
		FROM (
			SELECT DISTINCT ON (airline_iata_code) *
			FROM airline_ratings
			ORDER BY airline_iata_code, created_at DESC
		) ar
		JOIN airlines al ON ar.airline_iata_code = al.iata_code
		ORDER BY ar.rating_departure DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top airlines: %w", err)
	}
	defer rows.Close()

	var out []domain.AirlineRating
	for rows.Next() {
		var a domain.AirlineRating
		if err := rows.Scan(&a.IATACode, &a.Name, &a.RatingDeparture, &a.RatingArrival, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan airline rating: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DelayStats returns the delay histogram for one airline: per-category
// flight counts and average arrival delay. Returns ErrNotFound for an
// unknown IATA code.
func (r *AirlineRepo) DelayStats(ctx context.Context, iata string) ([]domain.DelayBucket, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM airlines WHERE iata_code = $1`, iata).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check airline: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ff.delay_category,
		       COUNT(*) AS count,
		       ROUND(AVG(EXTRACT(EPOCH FROM (f.fact_arrival - f.plan_arrival)))) AS avg_delay_seconds
		FROM flights f
		JOIN flight_features ff ON f.id = ff.flight_id
		WHERE f.iata_code = $1
		GROUP BY ff.delay_category
		ORDER BY ff.delay_category
	`, iata)
	if err != nil {
		return nil, fmt.Errorf("airline delay stats: %w", err)
	}
	defer rows.Close()

	var out []domain.DelayBucket
	for rows.Next() {
		var b domain.DelayBucket
		if err := rows.Scan(&b.Category, &b.Count, &b.AvgDelaySeconds); err != nil {
			return nil, fmt.Errorf("scan delay bucket: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Exists reports whether an airline with the given IATA code is known.
func (r *AirlineRepo) Exists(ctx context.Context, iata string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM airlines WHERE iata_code = $1`, iata).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check airline: %w", err)
	}
	return true, nil
}
