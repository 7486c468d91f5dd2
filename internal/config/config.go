// Package config builds the pipeline configuration once at startup from the
// process environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverSQLite3  = "sqlite3"
)

// Save policies for repeated ingestion of the same dataset.
const (
	SavePolicyAppend    = "append"
	SavePolicySupersede = "supersede"
)

// Database configures the repository.
type Database struct {
	Driver       string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	URL          string `env:"DATABASE_URL" envDefault:"population.db"`
	Schema       string `env:"DATABASE_SCHEMA" envDefault:"public"`
	QueryMonitor bool   `env:"SHOW_PG_MONITOR" envDefault:"false"`
	SavePolicy   string `env:"SAVE_POLICY" envDefault:"append"`
}

// Source configures the fetcher.
type Source struct {
	URL        string        `env:"API_URL" envDefault:"https://datausa.io/api/data"`
	Drilldowns string        `env:"API_DRILLDOWNS" envDefault:"Nation"`
	Measures   string        `env:"API_MEASURES" envDefault:"Population"`
	Timeout    time.Duration `env:"FETCH_TIMEOUT" envDefault:"0s"`
}

// Telemetry configures opt-in tracing.
type Telemetry struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"population-pipeline"`
}

// Config is the single configuration value passed to every constructor.
type Config struct {
	Database   Database
	Source     Source
	Telemetry  Telemetry
	ReportDir  string `env:"REPORT_DIR"`
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
}

// Load reads .env (when present) into the environment and parses Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom parses Config from an explicit environment map.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverSQLite3:
	default:
		return fmt.Errorf("DATABASE_DRIVER: unsupported driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.Driver == DriverPostgres && strings.TrimSpace(c.Database.Schema) == "" {
		return fmt.Errorf("DATABASE_SCHEMA is required for postgres")
	}
	switch c.Database.SavePolicy {
	case SavePolicyAppend, SavePolicySupersede:
	default:
		return fmt.Errorf("SAVE_POLICY: unsupported policy %q", c.Database.SavePolicy)
	}
	u, err := url.Parse(c.Source.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL: invalid endpoint %q", c.Source.URL)
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("FETCH_TIMEOUT must not be negative")
	}
	return nil
}

// Endpoint returns the fetch URL with the drilldown and measure parameters.
func (s Source) Endpoint() string {
	u, err := url.Parse(s.URL)
	if err != nil {
		return s.URL
	}
	q := u.Query()
	if s.Drilldowns != "" {
		q.Set("drilldowns", s.Drilldowns)
	}
	if s.Measures != "" {
		q.Set("measures", s.Measures)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
