package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skylens/flightpulse/internal/analysis"
	"github.com/skylens/flightpulse/internal/api"
	"github.com/skylens/flightpulse/internal/auth"
	"github.com/skylens/flightpulse/internal/config"
	"github.com/skylens/flightpulse/internal/mining"
	"github.com/skylens/flightpulse/internal/reports"
	"github.com/skylens/flightpulse/internal/repository/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("database URL is not configured (set database.url or DATABASE_URL)")
	}

	// Connect to PostgreSQL
	db, err := postgres.Open(cfg.Database.URL,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.Lifetime())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Repositories
	flightRepo := postgres.NewFlightRepo(db)
	airlineRepo := postgres.NewAirlineRepo(db)
	airportRepo := postgres.NewAirportRepo(db)
	featureRepo := postgres.NewFeatureRepo(db)
	tokenRepo := postgres.NewTokenRepo(db)

	// Delay-rule mining: persisted rule store plus the background runner.
	ruleStore, err := analysis.NewRuleStore(cfg.Mining.RulesPath)
	if err != nil {
		log.Fatalf("Failed to initialize rule store: %v", err)
	}
	runner := analysis.NewRunner(featureRepo, ruleStore, analysis.Options{
		Mining: mining.Config{
			MinSupport: cfg.Mining.MinSupport,
			MaxLen:     cfg.Mining.MaxLen,
			MaxItems:   cfg.Mining.MaxItems,
		},
		MinLift:     cfg.Mining.MinLift,
		LoadTimeout: cfg.Mining.LoadTimeout(),
	})

	// Optional precomputed reports with an optional Redis cache in front.
	var reportGen *reports.Generator
	if cfg.Reports.Enabled {
		var cache *reports.Cache
		if cfg.Redis.Enabled {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := rdb.Ping(context.Background()).Err(); err != nil {
				log.Printf("Redis unreachable, report cache disabled: %v", err)
			} else {
				cache = reports.NewCache(rdb)
			}
		}
		reportGen, err = reports.NewGenerator(db, cfg.Reports.Dir, cfg.Reports.Interval(), cache)
		if err != nil {
			log.Fatalf("Failed to initialize report generator: %v", err)
		}
		reportGen.Start()
		defer reportGen.Stop()
	}

	// HTTP layer
	var reportLoader api.ReportLoader
	if reportGen != nil {
		reportLoader = reportGen
	}
	handlers := api.NewHandlers(db,
		flightRepo, airlineRepo, airportRepo, tokenRepo, featureRepo,
		ruleStore, runner, reportLoader)
	authManager := auth.NewManager(tokenRepo, cfg.Auth.AdminSecret)
	server := api.NewServer(handlers, authManager)

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := cfg.Server.Addr()
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
