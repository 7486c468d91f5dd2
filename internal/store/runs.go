package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"population-pipeline/internal/model"
)

// ErrRunNotFound is returned by GetRun for unknown ids.
var ErrRunNotFound = errors.New("run not found")

// StartRun records a new run in the idle state.
func (s *Store) StartRun(ctx context.Context, runID string, startedAt time.Time) error {
	p := s.dialect.placeholder
	stmt := fmt.Sprintf(`INSERT INTO %s (id, state, started_at) VALUES (%s, %s, %s)`, s.table(runsTable), p(1), p(2), p(3))
	if _, err := s.q.ExecContext(ctx, stmt, runID, string(model.StateIdle), startedAt.UTC()); err != nil {
		return fmt.Errorf("start run %s: %w", runID, err)
	}
	return nil
}

// UpdateRunState stores the run's current orchestrator state.
func (s *Store) UpdateRunState(ctx context.Context, runID string, state model.RunState) error {
	p := s.dialect.placeholder
	stmt := fmt.Sprintf(`UPDATE %s SET state = %s WHERE id = %s`, s.table(runsTable), p(1), p(2))
	if _, err := s.q.ExecContext(ctx, stmt, string(state), runID); err != nil {
		return fmt.Errorf("update run %s: %w", runID, err)
	}
	return nil
}

// FinishRun stores the final state, whichever sums were produced and the
// failure message, if any.
func (s *Store) FinishRun(ctx context.Context, report *model.RunReport) error {
	sums := map[model.Method]sql.NullInt64{}
	for _, m := range model.Methods {
		if v, ok := report.Result(m); ok {
			sums[m] = sql.NullInt64{Int64: v, Valid: true}
		}
	}

	p := s.dialect.placeholder
	stmt := fmt.Sprintf(`UPDATE %s SET state = %s, in_memory_sum = %s, inline_query_sum = %s, view_sum = %s, error = %s, finished_at = %s WHERE id = %s`,
		s.table(runsTable), p(1), p(2), p(3), p(4), p(5), p(6), p(7))
	_, err := s.q.ExecContext(ctx, stmt,
		string(report.State),
		sums[model.MethodInMemory], sums[model.MethodInlineQuery], sums[model.MethodView],
		report.Error, report.FinishedAt.UTC(), report.RunID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", report.RunID, err)
	}
	return nil
}

const runColumns = `id, state, in_memory_sum, inline_query_sum, view_sum, error, started_at, finished_at`

// ListRuns returns the run history, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]model.RunRecord, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM %s ORDER BY started_at DESC`, runColumns, s.table(runsTable))
	rows, err := s.q.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []model.RunRecord{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches a single run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (model.RunRecord, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM %s WHERE id = %s`, runColumns, s.table(runsTable), s.dialect.placeholder(1))
	r, err := scanRun(s.q.QueryRowContext(ctx, stmt, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.RunRecord{}, ErrRunNotFound
	}
	if err != nil {
		return model.RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (model.RunRecord, error) {
	var r model.RunRecord
	var state string
	var inMemory, inline, view sql.NullInt64
	var finished sql.NullTime
	if err := sc.Scan(&r.ID, &state, &inMemory, &inline, &view, &r.Error, &r.StartedAt, &finished); err != nil {
		return model.RunRecord{}, err
	}
	r.State = model.RunState(state)
	r.InMemorySum = nullableInt(inMemory)
	r.InlineQuerySum = nullableInt(inline)
	r.ViewSum = nullableInt(view)
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return r, nil
}

func nullableInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
