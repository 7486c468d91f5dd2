package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"population-pipeline/internal/config"
)

// Store is the relational repository for raw documents, the aggregate
// queries over them and the run history.
type Store struct {
	db      *sql.DB
	q       queryer
	dialect dialect
	cfg     config.Database
}

// Open connects using cfg.Driver as the database/sql driver name
// ("postgres" -> lib/pq, "sqlite" -> modernc, "sqlite3" -> go-sqlite3).
func Open(ctx context.Context, cfg config.Database) (*Store, error) {
	db, err := sql.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	s, err := New(db, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return s, nil
}

// New wraps an already opened database. The connection is used serially,
// so the pool is limited to one connection.
func New(db *sql.DB, cfg config.Database) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sql db is required")
	}
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, dialect: d, cfg: cfg}
	s.q = s.wrap(db)
	if d.name() != config.DriverPostgres && cfg.Schema != "" && cfg.Schema != "public" {
		log.Printf("⚠️ %s has no schemas, ignoring DATABASE_SCHEMA=%q", cfg.Driver, cfg.Schema)
	}
	return s, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) wrap(q queryer) queryer {
	if s.cfg.QueryMonitor {
		return &monitor{next: q, logf: log.Printf}
	}
	return q
}

func (s *Store) table(name string) string {
	return s.dialect.qualify(s.cfg.Schema, name)
}
