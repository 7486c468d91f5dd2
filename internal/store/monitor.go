package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// monitor logs every statement with its duration, like attaching a query
// monitor to the driver.
type monitor struct {
	next queryer
	logf func(format string, args ...any)
}

func (m *monitor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := m.next.ExecContext(ctx, query, args...)
	m.log("exec", query, len(args), time.Since(start), err)
	return res, err
}

func (m *monitor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := m.next.QueryContext(ctx, query, args...)
	m.log("query", query, len(args), time.Since(start), err)
	return rows, err
}

// Row errors surface on Scan, so only the round trip is logged here.
func (m *monitor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := m.next.QueryRowContext(ctx, query, args...)
	m.log("query", query, len(args), time.Since(start), nil)
	return row
}

func (m *monitor) log(kind, query string, nargs int, d time.Duration, err error) {
	stmt := strings.Join(strings.Fields(query), " ")
	if err != nil {
		m.logf("🔎 %s (%d args, %v): %s ❌ %v", kind, nargs, d, stmt, err)
		return
	}
	m.logf("🔎 %s (%d args, %v): %s", kind, nargs, d, stmt)
}
