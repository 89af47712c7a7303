// Package reports maintains the precomputed punctuality reports: plain SQL
// aggregations regenerated on a timer, persisted as JSON files, and served
// by the read path without touching the database. An optional Redis cache
// sits in front of the files.
package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/skylens/flightpulse/internal/domain"
	"github.com/skylens/flightpulse/internal/pkg/logger"
)

// ErrNotReady is returned by Load before the first generation pass.
var ErrNotReady = errors.New("report not generated yet")

// Report names accepted by Load.
const (
	ReportDirections = "directions"
	ReportAirlines   = "airlines"
)

// DirectionReport is the punctuality summary for one departure/arrival pair.
type DirectionReport struct {
	DepartureAirport string  `json:"departure_airport"`
	ArrivalAirport   string  `json:"arrival_airport"`
	Flights          int     `json:"flights"`
	Delayed          int     `json:"delayed"`
	Punctuality      float64 `json:"punctuality"`
}

// AirlineReport is the punctuality summary and delay histogram for one airline.
type AirlineReport struct {
	IATACode    string               `json:"iata_code"`
	Flights     int                  `json:"flights"`
	Delayed     int                  `json:"delayed"`
	Punctuality float64              `json:"punctuality"`
	Histogram   []domain.DelayBucket `json:"histogram"`
}

// Generator regenerates the report files on a fixed interval. One pass at a
// time; a tick landing while the previous pass still runs is skipped.
type Generator struct {
	db       *sql.DB
	dir      string
	interval time.Duration
	cache    *Cache

	running int32
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewGenerator creates a report generator writing JSON files under dir.
// cache may be nil (no caching).
func NewGenerator(db *sql.DB, dir string, interval time.Duration, cache *Cache) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Generator{db: db, dir: dir, interval: interval, cache: cache}, nil
}

// Start launches the background regeneration loop: one pass immediately,
// then one per interval until Stop.
func (g *Generator) Start() {
	g.ctx, g.cancel = context.WithCancel(context.Background())
	go func() {
		g.RunOnce(g.ctx)
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()
		for {
			select {
			case <-g.ctx.Done():
				return
			case <-ticker.C:
				g.RunOnce(g.ctx)
			}
		}
	}()
}

// Stop halts the regeneration loop.
func (g *Generator) Stop() {
	if g.cancel != nil {
		g.cancel()
	}
}

// RunOnce regenerates both reports. Failures are logged, never fatal; the
// previous files stay in place.
func (g *Generator) RunOnce(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&g.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&g.running, 0)

	if err := g.generateDirections(ctx); err != nil {
		logger.Error("direction report generation failed", "error", err)
	}
	if err := g.generateAirlines(ctx); err != nil {
		logger.Error("airline report generation failed", "error", err)
	}
}

// Load returns the serialized report by name, preferring the Redis cache.
func (g *Generator) Load(ctx context.Context, name string) ([]byte, error) {
	if name != ReportDirections && name != ReportAirlines {
		return nil, fmt.Errorf("unknown report %q", name)
	}
	if data, ok := g.cache.Get(ctx, name); ok {
		return data, nil
	}
	data, err := os.ReadFile(g.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotReady
	}
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", name, err)
	}
	return data, nil
}

func (g *Generator) path(name string) string {
	return filepath.Join(g.dir, name+".json")
}

func (g *Generator) generateDirections(ctx context.Context) error {
	rows, err := g.db.QueryContext(ctx, `
		SELECT f.departure_airport, f.arrival_airport,
		       COUNT(*) AS flights,
		       COUNT(*) FILTER (WHERE ff.delay_category <> 'no_delay') AS delayed
		FROM flights f
		JOIN flight_features ff ON f.id = ff.flight_id
		GROUP BY f.departure_airport, f.arrival_airport
		ORDER BY f.departure_airport, f.arrival_airport
	`)
	if err != nil {
		return fmt.Errorf("aggregate directions: %w", err)
	}
	defer rows.Close()

	out := []DirectionReport{}
	for rows.Next() {
		var d DirectionReport
		if err := rows.Scan(&d.DepartureAirport, &d.ArrivalAirport, &d.Flights, &d.Delayed); err != nil {
			return fmt.Errorf("scan direction row: %w", err)
		}
		if d.Flights > 0 {
			d.Punctuality = float64(d.Flights-d.Delayed) / float64(d.Flights)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return g.persist(ctx, ReportDirections, out)
}

func (g *Generator) generateAirlines(ctx context.Context) error {
	rows, err := g.db.QueryContext(ctx, `
		SELECT f.iata_code, ff.delay_category,
		       COUNT(*) AS count,
		       COALESCE(ROUND(AVG(EXTRACT(EPOCH FROM (f.fact_arrival - f.plan_arrival)))), 0) AS avg_delay_seconds
		FROM flights f
		JOIN flight_features ff ON f.id = ff.flight_id
		GROUP BY f.iata_code, ff.delay_category
		ORDER BY f.iata_code, ff.delay_category
	`)
	if err != nil {
		return fmt.Errorf("aggregate airlines: %w", err)
	}
	defer rows.Close()

	byAirline := map[string]*AirlineReport{}
	var order []string
	for rows.Next() {
		var iata string
		var bucket domain.DelayBucket
		if err := rows.Scan(&iata, &bucket.Category, &bucket.Count, &bucket.AvgDelaySeconds); err != nil {
			return fmt.Errorf("scan airline row: %w", err)
		}
		rep, ok := byAirline[iata]
		if !ok {
			rep = &AirlineReport{IATACode: iata}
			byAirline[iata] = rep
			order = append(order, iata)
		}
		rep.Flights += bucket.Count
		if bucket.Category != domain.DelayNone {
			rep.Delayed += bucket.Count
		}
		rep.Histogram = append(rep.Histogram, bucket)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	out := make([]AirlineReport, 0, len(order))
	for _, iata := range order {
		rep := byAirline[iata]
		if rep.Flights > 0 {
			rep.Punctuality = float64(rep.Flights-rep.Delayed) / float64(rep.Flights)
		}
		out = append(out, *rep)
	}
	return g.persist(ctx, ReportAirlines, out)
}

// persist writes the report atomically (temp file + rename) and refreshes
// the cache entry.
func (g *Generator) persist(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(g.dir, "."+name+"-*.json")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Rename(tmp.Name(), g.path(name)); err != nil {
		return fmt.Errorf("replace report %s: %w", name, err)
	}

	g.cache.Set(ctx, name, data, g.interval)
	logger.Info("report regenerated", "report", name, "bytes", len(data))
	return nil
}
