package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/skylens/flightpulse/internal/domain"
)

// FlightRepo implements flight queries and airline uploads against PostgreSQL.
type FlightRepo struct{ db *sql.DB }

// NewFlightRepo creates a Postgres-backed flight repository.
func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// FlightFilter holds the optional search criteria. Zero values mean "no
// constraint"; delay bounds are in seconds of arrival delay.
type FlightFilter struct {
	Airline          string
	DepartureAirport string
	ArrivalAirport   string
	DateFrom         *time.Time
	DateTo           *time.Time
	MinDelaySeconds  *int
	MaxDelaySeconds  *int
	Limit            int
}

// Search returns flights matching the filter, newest plan_departure first.
// Filter clauses are assembled dynamically with positional parameters.
func (r *FlightRepo) Search(ctx context.Context, f FlightFilter) ([]domain.FlightSummary, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	q := `
		SELECT f.id, f.iata_code, f.flight,
		       f.departure_airport, f.arrival_airport,
		       f.plan_departure, f.plan_arrival,
		       f.fact_departure, f.fact_arrival,
		       ff.day_of_week, ff.time_of_day, ff.season, ff.delay_category
		FROM flights f
		LEFT JOIN flight_features ff ON f.id = ff.flight_id
		WHERE 1=1`

	args := []interface{}{}
	idx := 1
	add := func(clause string, vals ...interface{}) {
		q += clause
		args = append(args, vals...)
		idx += len(vals)
	}

	if f.Airline != "" {
		add(fmt.Sprintf(" AND f.iata_code = $%d", idx), f.Airline)
	}
	if f.DepartureAirport != "" {
		add(fmt.Sprintf(" AND f.departure_airport = $%d", idx), f.DepartureAirport)
	}
	if f.ArrivalAirport != "" {
		add(fmt.Sprintf(" AND f.arrival_airport = $%d", idx), f.ArrivalAirport)
	}
	if f.DateFrom != nil {
		add(fmt.Sprintf(" AND DATE(f.plan_departure) >= $%d", idx), *f.DateFrom)
	}
	if f.DateTo != nil {
		add(fmt.Sprintf(" AND DATE(f.plan_departure) <= $%d", idx), *f.DateTo)
	}
	if f.MinDelaySeconds != nil || f.MaxDelaySeconds != nil {
		add(fmt.Sprintf(
			" AND EXTRACT(EPOCH FROM (f.fact_arrival - f.plan_arrival)) BETWEEN COALESCE($%d, -100000) AND COALESCE($%d, 100000)",
			idx, idx+1), nullableInt(f.MinDelaySeconds), nullableInt(f.MaxDelaySeconds))
	}

	q += fmt.Sprintf(" ORDER BY f.plan_departure DESC LIMIT $%d", idx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	defer rows.Close()

	var out []domain.FlightSummary
	for rows.Next() {
		var fs domain.FlightSummary
		if err := rows.Scan(
			&fs.ID, &fs.AirlineCode, &fs.Number,
			&fs.DepartureAirport, &fs.ArrivalAirport,
			&fs.PlanDeparture, &fs.PlanArrival,
			&fs.FactDeparture, &fs.FactArrival,
			&fs.DayOfWeek, &fs.TimeOfDay, &fs.Season, &fs.DelayCategory,
		); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}

// Get returns one flight with airports resolved and features attached.
func (r *FlightRepo) Get(ctx context.Context, id int64) (*domain.FlightDetail, error) {
	d := &domain.FlightDetail{}
	err := r.db.QueryRowContext(ctx, `
		SELECT f.id, f.iata_code, f.flight,
		       f.departure_airport, f.arrival_airport,
		       f.plan_departure, f.plan_arrival,
		       f.fact_departure, f.fact_arrival,
		       dep.airport_name, dep.city,
		       arr.airport_name, arr.city,
		       ff.day_of_week, ff.time_of_day, ff.season, ff.delay_category
		FROM flights f
		JOIN airports dep ON f.departure_airport = dep.iata_code
		JOIN airports arr ON f.arrival_airport = arr.iata_code
		LEFT JOIN flight_features ff ON f.id = ff.flight_id
		WHERE f.id = $1
	`, id).Scan(
		&d.ID, &d.AirlineCode, &d.Number,
		&d.DepartureAirport, &d.ArrivalAirport,
		&d.PlanDeparture, &d.PlanArrival,
		&d.FactDeparture, &d.FactArrival,
		&d.DepartureAirportName, &d.DepartureCity,
		&d.ArrivalAirportName, &d.ArrivalCity,
		&d.DayOfWeek, &d.TimeOfDay, &d.Season, &d.DelayCategory,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return d, nil
}

// Upsert records one uploaded flight for the authenticated airline. An
// existing flight (same airline, number and planned departure) gets its
// actual times updated; anything else is inserted.
func (r *FlightRepo) Upsert(ctx context.Context, airline string, u domain.FlightUpload) error {
	var existingID int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM flights
		WHERE iata_code = $1 AND flight = $2 AND plan_departure = $3
	`, airline, u.Number, u.PlanDeparture).Scan(&existingID)

	switch {
	case err == sql.ErrNoRows:
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO flights (
				iata_code, flight,
				departure_airport, arrival_airport,
				plan_departure, plan_arrival,
				fact_departure, fact_arrival
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, airline, u.Number,
			u.DepartureAirport, u.ArrivalAirport,
			u.PlanDeparture, u.PlanArrival,
			u.FactDeparture, u.FactArrival)
		if err != nil {
			return fmt.Errorf("insert flight: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("lookup flight: %w", err)
	default:
		_, err = r.db.ExecContext(ctx, `
			UPDATE flights
			SET fact_departure = $1, fact_arrival = $2
			WHERE id = $3
		`, u.FactDeparture, u.FactArrival, existingID)
		if err != nil {
			return fmt.Errorf("update flight: %w", err)
		}
		return nil
	}
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
