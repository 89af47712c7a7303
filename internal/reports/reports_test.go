package reports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectAggregates(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`GROUP BY f.departure_airport, f.arrival_airport`).
		WillReturnRows(sqlmock.NewRows([]string{"departure_airport", "arrival_airport", "flights", "delayed"}).
			AddRow("SVO", "LED", 100, 25).
			AddRow("LED", "SVO", 80, 8))
	mock.ExpectQuery(`GROUP BY f.iata_code, ff.delay_category`).
		WillReturnRows(sqlmock.NewRows([]string{"iata_code", "delay_category", "count", "avg_delay_seconds"}).
			AddRow("SU", "long", 10, 5400).
			AddRow("SU", "no_delay", 90, 0))
}

func TestRunOnceGeneratesReports(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gen, err := NewGenerator(db, t.TempDir(), time.Hour, nil)
	require.NoError(t, err)

	expectAggregates(mock)
	gen.RunOnce(context.Background())
	require.NoError(t, mock.ExpectationsWereMet())

	data, err := gen.Load(context.Background(), ReportDirections)
	require.NoError(t, err)
	var directions []DirectionReport
	require.NoError(t, json.Unmarshal(data, &directions))
	require.Len(t, directions, 2)
	assert.Equal(t, 0.75, directions[0].Punctuality)

	data, err = gen.Load(context.Background(), ReportAirlines)
	require.NoError(t, err)
	var airlines []AirlineReport
	require.NoError(t, json.Unmarshal(data, &airlines))
	require.Len(t, airlines, 1)
	assert.Equal(t, 100, airlines[0].Flights)
	assert.Equal(t, 10, airlines[0].Delayed)
	assert.Equal(t, 0.9, airlines[0].Punctuality)
	assert.Len(t, airlines[0].Histogram, 2)
}

func TestLoadBeforeFirstGeneration(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gen, err := NewGenerator(db, t.TempDir(), time.Hour, nil)
	require.NoError(t, err)

	_, err = gen.Load(context.Background(), ReportDirections)
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = gen.Load(context.Background(), "bogus")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotReady)
}

func TestGenerationFailureKeepsPreviousReport(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gen, err := NewGenerator(db, t.TempDir(), time.Hour, nil)
	require.NoError(t, err)

	expectAggregates(mock)
	gen.RunOnce(context.Background())

	mock.ExpectQuery(`GROUP BY f.departure_airport, f.arrival_airport`).
		WillReturnError(assert.AnError)
	mock.ExpectQuery(`GROUP BY f.iata_code, ff.delay_category`).
		WillReturnError(assert.AnError)
	gen.RunOnce(context.Background())

	data, err := gen.Load(context.Background(), ReportDirections)
	require.NoError(t, err)
	var directions []DirectionReport
	require.NoError(t, json.Unmarshal(data, &directions))
	assert.Len(t, directions, 2)
}

func TestCacheServesWithoutFileRead(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gen, err := NewGenerator(db, t.TempDir(), time.Hour, cache)
	require.NoError(t, err)

	expectAggregates(mock)
	gen.RunOnce(context.Background())

	// Cache populated by the generation pass.
	cached, ok := cache.Get(context.Background(), ReportDirections)
	require.True(t, ok)
	assert.NotEmpty(t, cached)

	// TTL bound to the refresh interval.
	mr.FastForward(2 * time.Hour)
	_, ok = cache.Get(context.Background(), ReportDirections)
	assert.False(t, ok)

	// Expired cache falls through to the file.
	data, err := gen.Load(context.Background(), ReportDirections)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestNilCacheIsNoOp(t *testing.T) {
	var cache *Cache
	_, ok := cache.Get(context.Background(), ReportDirections)
	assert.False(t, ok)
	cache.Set(context.Background(), ReportDirections, []byte("x"), time.Minute) // must not panic
}
