// Package migrate runs setup steps from an explicit registry keyed by
// (category, name). Categories execute in a fixed declared order and steps
// within a category in registration order; nothing is discovered at runtime.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
)

// Category groups setup steps. Categories run in the order of Order.
type Category string

const (
	CategorySchema Category = "schema"
	CategoryTable  Category = "table"
	CategoryView   Category = "view"
)

// Order is the fixed execution order of categories.
var Order = []Category{CategorySchema, CategoryTable, CategoryView}

// Execer is the part of *sql.DB / *sql.Tx a step needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Params are handed to every step.
type Params struct {
	Schema string
}

// Handler applies one setup step. Handlers must be idempotent.
type Handler func(ctx context.Context, db Execer, p Params) error

// Step is a registered handler.
type Step struct {
	Category Category
	Name     string
	Run      Handler
}

// Key identifies the step in logs and errors.
func (s Step) Key() string {
	return string(s.Category) + "/" + s.Name
}

// Registry is an ordered set of setup steps.
type Registry struct {
	steps []Step
	seen  map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]bool)}
}

// Register adds a step. Unknown categories and duplicate keys are rejected.
func (r *Registry) Register(category Category, name string, run Handler) error {
	if !knownCategory(category) {
		return fmt.Errorf("unknown migration category %q", category)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("migration name is required")
	}
	if run == nil {
		return fmt.Errorf("migration %s/%s has no handler", category, name)
	}
	step := Step{Category: category, Name: name, Run: run}
	if r.seen[step.Key()] {
		return fmt.Errorf("migration %s already registered", step.Key())
	}
	r.seen[step.Key()] = true
	r.steps = append(r.steps, step)
	return nil
}

// MustRegister is Register for static registries built at init time.
func (r *Registry) MustRegister(category Category, name string, run Handler) {
	if err := r.Register(category, name, run); err != nil {
		panic(err)
	}
}

// Steps returns the steps in execution order.
func (r *Registry) Steps() []Step {
	ordered := make([]Step, 0, len(r.steps))
	for _, c := range Order {
		for _, s := range r.steps {
			if s.Category == c {
				ordered = append(ordered, s)
			}
		}
	}
	return ordered
}

// Apply executes every step in order, stopping at the first failure.
func (r *Registry) Apply(ctx context.Context, db Execer, p Params) error {
	for _, s := range r.Steps() {
		log.Printf("🛠️ executing %s %s %s...", p.Schema, s.Category, s.Name)
		if err := s.Run(ctx, db, p); err != nil {
			return fmt.Errorf("migration %s: %w", s.Key(), err)
		}
	}
	return nil
}

// SQL returns a handler executing statements built from Params.
func SQL(build func(p Params) []string) Handler {
	return func(ctx context.Context, db Execer, p Params) error {
		for _, stmt := range build(p) {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
}

func knownCategory(c Category) bool {
	for _, known := range Order {
		if known == c {
			return true
		}
	}
	return false
}
