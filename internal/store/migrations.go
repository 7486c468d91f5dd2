package store

import (
	"context"
	"fmt"

	"population-pipeline/internal/migrate"
)

// Migrations returns the setup steps for this store's dialect in their
// declared order: schema, tables, view.
func (s *Store) Migrations() *migrate.Registry {
	r := migrate.NewRegistry()
	r.MustRegister(migrate.CategorySchema, "schema", migrate.SQL(func(p migrate.Params) []string {
		return s.dialect.createSchema(p.Schema)
	}))
	r.MustRegister(migrate.CategoryTable, documentsTable, migrate.SQL(func(migrate.Params) []string {
		return s.dialect.createDocumentsTable(s.table(documentsTable))
	}))
	r.MustRegister(migrate.CategoryTable, runsTable, migrate.SQL(func(migrate.Params) []string {
		return s.dialect.createRunsTable(s.table(runsTable))
	}))
	r.MustRegister(migrate.CategoryView, sumView, migrate.SQL(func(migrate.Params) []string {
		return s.dialect.createView(s.table(sumView), s.dialect.populationSum(s.table(documentsTable)))
	}))
	return r
}

// Migrate creates the schema, tables and view if they are missing and
// refreshes the view definition.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.Migrations().Apply(ctx, s.q, migrate.Params{Schema: s.cfg.Schema}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
