package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Fatalf("expected default driver %q, got %q", DriverSQLite, cfg.Database.Driver)
	}
	if cfg.Database.Schema != "public" {
		t.Fatalf("expected default schema public, got %q", cfg.Database.Schema)
	}
	if cfg.Database.SavePolicy != SavePolicyAppend {
		t.Fatalf("expected append policy, got %q", cfg.Database.SavePolicy)
	}
	if cfg.Database.QueryMonitor {
		t.Fatal("expected query monitor off by default")
	}
	if cfg.Source.Timeout != 0 {
		t.Fatalf("expected no fetch timeout, got %v", cfg.Source.Timeout)
	}
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DATABASE_DRIVER": "postgres",
		"DATABASE_URL":    "postgres://u:p@localhost/db?sslmode=disable",
		"DATABASE_SCHEMA": "etl",
		"SHOW_PG_MONITOR": "true",
		"SAVE_POLICY":     "supersede",
		"FETCH_TIMEOUT":   "15s",
		"REPORT_DIR":      "/tmp/reports",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.Schema != "etl" {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if !cfg.Database.QueryMonitor {
		t.Fatal("expected query monitor on")
	}
	if cfg.Database.SavePolicy != SavePolicySupersede {
		t.Fatalf("expected supersede policy, got %q", cfg.Database.SavePolicy)
	}
	if cfg.Source.Timeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %v", cfg.Source.Timeout)
	}
	if cfg.ReportDir != "/tmp/reports" {
		t.Fatalf("unexpected report dir %q", cfg.ReportDir)
	}
}

func TestLoadFromRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"driver":  {"DATABASE_DRIVER": "mysql"},
		"policy":  {"SAVE_POLICY": "dedupe"},
		"url":     {"API_URL": "not a url"},
		"timeout": {"FETCH_TIMEOUT": "-1s"},
		"schema":  {"DATABASE_DRIVER": "postgres", "DATABASE_SCHEMA": " "},
	}
	for name, environ := range cases {
		if _, err := LoadFrom(environ); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestSourceEndpointAddsQueryParameters(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"API_URL": "https://example.test/api/data"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := cfg.Source.Endpoint()
	if !strings.HasPrefix(got, "https://example.test/api/data?") {
		t.Fatalf("unexpected endpoint %q", got)
	}
	if !strings.Contains(got, "drilldowns=Nation") || !strings.Contains(got, "measures=Population") {
		t.Fatalf("missing query parameters in %q", got)
	}
}
