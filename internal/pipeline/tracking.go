package pipeline

import (
	"context"
	"log"
	"time"

	"population-pipeline/internal/model"
)

// RunRecorder persists run history. Recording failures are logged and never
// fail the run.
type RunRecorder interface {
	StartRun(ctx context.Context, runID string, startedAt time.Time) error
	UpdateRunState(ctx context.Context, runID string, state model.RunState) error
	FinishRun(ctx context.Context, report *model.RunReport) error
}

// runTracker owns the state of one run and validates every transition.
type runTracker struct {
	report   *model.RunReport
	recorder RunRecorder
	now      func() time.Time
}

func newRunTracker(ctx context.Context, runID string, recorder RunRecorder, now func() time.Time) *runTracker {
	t := &runTracker{
		report: &model.RunReport{
			RunID:     runID,
			State:     model.StateIdle,
			Results:   []model.AggregateResult{},
			StartedAt: now().UTC(),
		},
		recorder: recorder,
		now:      now,
	}
	if recorder != nil {
		if err := recorder.StartRun(ctx, runID, t.report.StartedAt); err != nil {
			log.Printf("⚠️ run %s: failed to record start: %v", runID, err)
		}
	}
	return t
}

func (t *runTracker) state() model.RunState { return t.report.State }

// advance moves the run to the given state.
func (t *runTracker) advance(ctx context.Context, to model.RunState) error {
	from := t.report.State
	if err := model.CheckTransition(from, to); err != nil {
		return err
	}
	t.report.State = to
	log.Printf("➡️ run %s: %s -> %s", t.report.RunID, from, to)

	if t.recorder != nil && !to.IsTerminal() {
		if err := t.recorder.UpdateRunState(ctx, t.report.RunID, to); err != nil {
			log.Printf("⚠️ run %s: failed to record state %s: %v", t.report.RunID, to, err)
		}
	}
	return nil
}

func (t *runTracker) addResult(m model.Method, sum int64) {
	t.report.Results = append(t.report.Results, model.AggregateResult{Method: m, Sum: sum})
}

// fail moves the run to Failed from whatever non-terminal state it is in.
func (t *runTracker) fail(ctx context.Context, err error) {
	if t.report.State.IsTerminal() {
		return
	}
	_ = t.advance(ctx, model.StateFailed)
	t.report.Error = err.Error()
}

// finish stamps the end time and stores the final report.
func (t *runTracker) finish(ctx context.Context) *model.RunReport {
	t.report.FinishedAt = t.now().UTC()
	if t.recorder != nil {
		if err := t.recorder.FinishRun(ctx, t.report); err != nil {
			log.Printf("⚠️ run %s: failed to record result: %v", t.report.RunID, err)
		}
	}
	return t.report
}
