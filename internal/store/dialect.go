package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"population-pipeline/internal/config"
	"population-pipeline/internal/model"
)

const (
	documentsTable = "api_data"
	runsTable      = "pipeline_runs"
	sumView        = "vw_population_sum"
)

// dialect renders the SQL that differs between the supported engines.
// populationSum is the single definition of the year/flag filter: it backs
// both the inline query and the view so the two cannot drift apart.
type dialect interface {
	name() string
	qualify(schema, object string) string
	placeholder(n int) string
	boolean(b bool) string
	createSchema(schema string) []string
	createDocumentsTable(table string) []string
	createRunsTable(table string) []string
	createView(view, body string) []string
	populationSum(table string) string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return postgresDialect{}, nil
	case config.DriverSQLite, config.DriverSQLite3:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func yearList() string {
	years := make([]string, len(model.TargetYears))
	for i, y := range model.TargetYears {
		years[i] = strconv.FormatInt(y, 10)
	}
	return strings.Join(years, ", ")
}

// ------------------- Postgres -------------------

type postgresDialect struct{}

func (postgresDialect) name() string { return config.DriverPostgres }

func (postgresDialect) qualify(schema, object string) string {
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(object)
}

func (postgresDialect) placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) boolean(b bool) string { return strconv.FormatBool(b) }

func (postgresDialect) createSchema(schema string) []string {
	return []string{"CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(schema)}
}

func (postgresDialect) createDocumentsTable(table string) []string {
	return []string{fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		api_name TEXT,
		doc_id TEXT,
		doc_name TEXT,
		doc_record JSONB NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT true,
		is_deleted BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, table)}
}

func (postgresDialect) createRunsTable(table string) []string {
	return []string{fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		in_memory_sum BIGINT,
		inline_query_sum BIGINT,
		view_sum BIGINT,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ
	)`, table)}
}

func (postgresDialect) createView(view, body string) []string {
	return []string{fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", view, body)}
}

// A cast failure on malformed stored data aborts the statement server-side.
func (postgresDialect) populationSum(table string) string {
	return fmt.Sprintf(`
	SELECT CAST(COALESCE(SUM(CAST(rec->>'%[2]s' AS BIGINT)), 0) AS BIGINT) AS total_population
	FROM %[1]s AS d,
	     jsonb_array_elements(d.doc_record->'data') AS rec
	WHERE CAST(rec->>'%[3]s' AS INTEGER) IN (%[4]s)
	  AND d.is_active = true
	  AND d.is_deleted = false`, table, model.FieldPopulation, model.FieldYear, yearList())
}

// ------------------- SQLite -------------------

// SQLite has no schemas, so objects live in the main database and the
// configured schema name is ignored.
type sqliteDialect struct{}

func (sqliteDialect) name() string { return config.DriverSQLite }

func (sqliteDialect) qualify(_, object string) string { return `"` + object + `"` }

func (sqliteDialect) placeholder(int) string { return "?" }

func (sqliteDialect) boolean(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (sqliteDialect) createSchema(string) []string { return nil }

func (sqliteDialect) createDocumentsTable(table string) []string {
	return []string{fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		api_name TEXT,
		doc_id TEXT,
		doc_name TEXT,
		doc_record TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`, table)}
}

func (sqliteDialect) createRunsTable(table string) []string {
	return []string{fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		in_memory_sum INTEGER,
		inline_query_sum INTEGER,
		view_sum INTEGER,
		error TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL,
		finished_at DATETIME
	)`, table)}
}

func (sqliteDialect) createView(view, body string) []string {
	return []string{
		"DROP VIEW IF EXISTS " + view,
		fmt.Sprintf("CREATE VIEW %s AS %s", view, body),
	}
}

// sqliteSpace is the ASCII whitespace an integer cast skips around digits.
const sqliteSpace = "' '||char(9)||char(10)||char(11)||char(12)||char(13)"

// SQLite casts never fail, so values an integer cast would reject are
// counted instead and turn the total into NULL, which callers report as a
// query error.
func (sqliteDialect) populationSum(table string) string {
	trimmed := func(raw string) string {
		return fmt.Sprintf("trim(%s, %s)", raw, sqliteSpace)
	}
	isInt := func(typ, raw string) string {
		return fmt.Sprintf(`COALESCE(%[1]s = 'integer' OR (%[1]s = 'text' AND length(%[2]s) > 0 AND %[2]s NOT GLOB '*[^0-9]*'), 0)`, typ, trimmed(raw))
	}
	return fmt.Sprintf(`
	SELECT CASE
	         WHEN COALESCE(SUM(CASE WHEN (NOT year_ok AND NOT year_null) OR (in_years AND NOT pop_ok AND NOT pop_null) THEN 1 ELSE 0 END), 0) > 0 THEN NULL
	         ELSE CAST(COALESCE(SUM(CASE WHEN in_years AND pop_ok THEN CAST(%[7]s AS INTEGER) END), 0) AS INTEGER)
	       END AS total_population
	FROM (
	  SELECT year_ok, year_null, pop_ok, pop_null, pop_raw,
	         CASE WHEN year_ok AND CAST(%[8]s AS INTEGER) IN (%[4]s) THEN 1 ELSE 0 END AS in_years
	  FROM (
	    SELECT %[5]s AS year_ok,
	           (year_type IS NULL OR year_type = 'null') AS year_null,
	           %[6]s AS pop_ok,
	           (pop_type IS NULL OR pop_type = 'null') AS pop_null,
	           year_raw, pop_raw
	    FROM (
	      SELECT json_type(rec.value, '$."%[3]s"') AS year_type,
	             json_extract(rec.value, '$."%[3]s"') AS year_raw,
	             json_type(rec.value, '$."%[2]s"') AS pop_type,
	             json_extract(rec.value, '$."%[2]s"') AS pop_raw
	      FROM %[1]s AS d, json_each(d.doc_record, '$.data') AS rec
	      WHERE d.is_active = 1
	        AND d.is_deleted = 0
	    )
	  )
	)`, table, model.FieldPopulation, model.FieldYear, yearList(),
		isInt("year_type", "year_raw"), isInt("pop_type", "pop_raw"),
		trimmed("pop_raw"), trimmed("year_raw"))
}
