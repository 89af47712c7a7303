// Package config loads service configuration from a YAML file with
// environment variable overrides on top. Secrets live in env vars (or a
// local .env file); the YAML file carries everything else.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Mining   MiningConfig   `yaml:"mining"`
	Reports  ReportsConfig  `yaml:"reports"`
	Redis    RedisConfig    `yaml:"redis"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

// Lifetime returns the connection max lifetime as a duration.
func (c DatabaseConfig) Lifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetime) * time.Minute
}

// AuthConfig holds the admin credential for token management endpoints.
type AuthConfig struct {
	AdminSecret string `yaml:"admin_secret"`
}

// MiningConfig holds the delay-rule mining thresholds.
type MiningConfig struct {
	// MinSupport is the minimum itemset frequency, in (0,1].
	MinSupport float64 `yaml:"min_support"`
	// MinLift is the association-rule lift threshold.
	MinLift float64 `yaml:"min_lift"`
	// MaxLen bounds the itemset size.
	MaxLen int `yaml:"max_len"`
	// MaxItems caps distinct non-delay items admitted to the search.
	// Truncation is deterministic (support desc, token asc) but biased
	// toward high-support items; raise it if route/airline coverage matters
	// more than run time.
	MaxItems int `yaml:"max_items"`
	// RulesPath is the persisted ranked-rule CSV file.
	RulesPath string `yaml:"rules_path"`
	// LoadTimeoutSeconds bounds the feature snapshot load.
	LoadTimeoutSeconds int `yaml:"load_timeout_seconds"`
}

// LoadTimeout returns the snapshot-load timeout as a duration.
func (c MiningConfig) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSeconds) * time.Second
}

// ReportsConfig holds the precomputed punctuality report settings.
type ReportsConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Dir             string `yaml:"dir"`
	IntervalMinutes int    `yaml:"interval_minutes"`
}

// Interval returns the report refresh interval as a duration.
func (c ReportsConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// RedisConfig holds the optional report cache settings.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Load reads and parses the configuration file and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 15
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Mining.MinSupport == 0 {
		cfg.Mining.MinSupport = 0.05
	}
	if cfg.Mining.MinLift == 0 {
		cfg.Mining.MinLift = 1.5
	}
	if cfg.Mining.MaxLen == 0 {
		cfg.Mining.MaxLen = 4
	}
	if cfg.Mining.MaxItems == 0 {
		cfg.Mining.MaxItems = 1000
	}
	if cfg.Mining.RulesPath == "" {
		cfg.Mining.RulesPath = "data/delay_rules.csv"
	}
	if cfg.Mining.LoadTimeoutSeconds == 0 {
		cfg.Mining.LoadTimeoutSeconds = 120
	}
	if cfg.Reports.Dir == "" {
		cfg.Reports.Dir = "data/reports"
	}
	if cfg.Reports.IntervalMinutes == 0 {
		cfg.Reports.IntervalMinutes = 60
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("ADMIN_SECRET"); v != "" {
		cfg.Auth.AdminSecret = v
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RULES_PATH"); v != "" {
		cfg.Mining.RulesPath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	return cfg, nil
}
