package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/skylens/flightpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*FlightRepo, *AirlineRepo, *AirportRepo, *FeatureRepo, *TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFlightRepo(db), NewAirlineRepo(db), NewAirportRepo(db), NewFeatureRepo(db), NewTokenRepo(db), mock
}

func TestFlightSearchNoFilters(t *testing.T) {
	flights, _, _, _, _, mock := newMock(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT f.id, f.iata_code, f.flight`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "iata_code", "flight", "departure_airport", "arrival_airport",
			"plan_departure", "plan_arrival", "fact_departure", "fact_arrival",
			"day_of_week", "time_of_day", "season", "delay_category",
		}).AddRow(1, "SU", "SU100", "SVO", "LED", now, now.Add(time.Hour), nil, nil, nil, nil, nil, nil))

	out, err := flights.Search(context.Background(), FlightFilter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "SU", out[0].AirlineCode)
	assert.Nil(t, out[0].DelayCategory)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightSearchAssemblesFilterClauses(t *testing.T) {
	flights, _, _, _, _, mock := newMock(t)

	minDelay := 600
	mock.ExpectQuery(`f.iata_code = \$1 AND f.departure_airport = \$2 AND EXTRACT\(EPOCH FROM \(f.fact_arrival - f.plan_arrival\)\) BETWEEN COALESCE\(\$3, -100000\) AND COALESCE\(\$4, 100000\) ORDER BY f.plan_departure DESC LIMIT \$5`).
		WithArgs("SU", "SVO", 600, nil, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "iata_code", "flight", "departure_airport", "arrival_airport",
			"plan_departure", "plan_arrival", "fact_departure", "fact_arrival",
			"day_of_week", "time_of_day", "season", "delay_category",
		}))

	_, err := flights.Search(context.Background(), FlightFilter{
		Airline:          "SU",
		DepartureAirport: "SVO",
		MinDelaySeconds:  &minDelay,
		Limit:            10,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightGetNotFound(t *testing.T) {
	flights, _, _, _, _, mock := newMock(t)

	mock.ExpectQuery(`FROM flights f`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := flights.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlightUpsertInsertsNewFlight(t *testing.T) {
	flights, _, _, _, _, mock := newMock(t)

	dep := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	arr := dep.Add(2 * time.Hour)
	u := domain.FlightUpload{
		Number:           "SU100",
		DepartureAirport: "SVO",
		ArrivalAirport:   "LED",
		PlanDeparture:    dep,
		PlanArrival:      arr,
	}

	mock.ExpectQuery(`SELECT id FROM flights`).
		WithArgs("SU", "SU100", dep).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`INSERT INTO flights`).
		WithArgs("SU", "SU100", "SVO", "LED", dep, arr, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, flights.Upsert(context.Background(), "SU", u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFlightUpsertUpdatesExisting(t *testing.T) {
	flights, _, _, _, _, mock := newMock(t)

	dep := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	factArr := dep.Add(150 * time.Minute)
	u := domain.FlightUpload{
		Number:           "SU100",
		DepartureAirport: "SVO",
		ArrivalAirport:   "LED",
		PlanDeparture:    dep,
		PlanArrival:      dep.Add(2 * time.Hour),
		FactArrival:      &factArr,
	}

	mock.ExpectQuery(`SELECT id FROM flights`).
		WithArgs("SU", "SU100", dep).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`UPDATE flights`).
		WithArgs(nil, &factArr, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, flights.Upsert(context.Background(), "SU", u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAirlineTopRated(t *testing.T) {
	_, airlines, _, _, _, mock := newMock(t)

	mock.ExpectQuery(`DISTINCT ON \(airline_iata_code\)`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{
			"airline_iata_code", "name", "rating_departure", "rating_arrival", "created_at",
		}).
			AddRow("SU", "Aeroflot", 0.91, 0.88, time.Now()).
			AddRow("S7", "S7 Airlines", 0.87, 0.90, time.Now()))

	out, err := airlines.TopRated(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "SU", out[0].IATACode)
}

func TestAirlineDelayStatsUnknownAirline(t *testing.T) {
	_, airlines, _, _, _, mock := newMock(t)

	mock.ExpectQuery(`SELECT 1 FROM airlines`).
		WithArgs("XX").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	_, err := airlines.DelayStats(context.Background(), "XX")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAirportStatsUnknownAirport(t *testing.T) {
	_, _, airports, _, _, mock := newMock(t)

	mock.ExpectQuery(`SELECT 1 FROM airports`).
		WithArgs("XXX").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	_, err := airports.Stats(context.Background(), "XXX")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFeatures(t *testing.T) {
	_, _, _, features, _, mock := newMock(t)

	mock.ExpectQuery(`FROM flight_features`).
		WillReturnRows(sqlmock.NewRows([]string{
			"flight_id", "day_of_week", "time_of_day", "season",
			"departure_airport", "arrival_airport", "airline_code", "delay_category",
		}).
			AddRow(1, "Monday", "morning", "winter", "SVO", "LED", "SU", "long").
			AddRow(2, "Tuesday", "", "summer", "LED", "SVO", "SU", "no_delay"))

	out, err := features.ListFeatures(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, domain.DelayLong, out[0].DelayCategory)
	assert.Empty(t, out[1].TimeOfDay)
}

func TestTokenLifecycle(t *testing.T) {
	_, _, _, _, tokens, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO tokens`).
		WithArgs("tok-1", "SU").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, tokens.Create(ctx, "tok-1", "SU"))

	mock.ExpectQuery(`SELECT airline_iata_code FROM tokens`).
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"airline_iata_code"}).AddRow("SU"))
	airline, err := tokens.AirlineForToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "SU", airline)

	mock.ExpectExec(`UPDATE tokens SET is_active = FALSE`).
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, tokens.Deactivate(ctx, "tok-1"))

	mock.ExpectExec(`UPDATE tokens SET is_active = FALSE`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, tokens.Deactivate(ctx, "missing"), ErrNotFound)

	mock.ExpectQuery(`SELECT airline_iata_code FROM tokens`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"airline_iata_code"}))
	_, err = tokens.AirlineForToken(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
