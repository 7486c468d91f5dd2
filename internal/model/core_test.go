package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestTransitions(t *testing.T) {
	allowed := [][2]RunState{
		{StateIdle, StateFetched},
		{StateFetched, StatePersisted},
		{StatePersisted, StateReconciled},
		{StateReconciled, StateDone},
		{StateIdle, StateFailed},
		{StateFetched, StateFailed},
		{StatePersisted, StateFailed},
		{StateReconciled, StateFailed},
	}
	for _, tr := range allowed {
		if err := CheckTransition(tr[0], tr[1]); err != nil {
			t.Fatalf("expected %s -> %s to be allowed: %v", tr[0], tr[1], err)
		}
	}

	rejected := [][2]RunState{
		{StateIdle, StatePersisted},
		{StateFetched, StateDone},
		{StateDone, StateFailed},
		{StateFailed, StateIdle},
		{StateDone, StateFetched},
		{StateReconciled, StateFetched},
	}
	for _, tr := range rejected {
		if CanTransition(tr[0], tr[1]) {
			t.Fatalf("expected %s -> %s to be rejected", tr[0], tr[1])
		}
	}
}

func TestPipelineErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("run: %w", NetworkError("fetch", cause))

	if !errors.Is(err, ErrNetwork) {
		t.Fatal("expected kind to match")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to match")
	}
	if errors.Is(err, ErrQuery) {
		t.Fatal("unexpected kind match")
	}
	if KindOf(err) != ErrNetwork {
		t.Fatalf("unexpected kind %v", KindOf(err))
	}
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Op != "fetch" {
		t.Fatalf("expected PipelineError with op fetch, got %v", err)
	}
	if KindOf(errors.New("plain")) != nil {
		t.Fatal("plain errors have no kind")
	}
}

func TestReportConsistency(t *testing.T) {
	r := &RunReport{Results: []AggregateResult{
		{Method: MethodInMemory, Sum: 300},
		{Method: MethodInlineQuery, Sum: 300},
		{Method: MethodView, Sum: 300},
	}}
	if !r.Consistent() {
		t.Fatal("expected consistent report")
	}
	r.Results[2].Sum = 600
	if r.Consistent() {
		t.Fatal("expected inconsistent report")
	}
	if _, ok := (&RunReport{}).Result(MethodView); ok {
		t.Fatal("empty report has no results")
	}
}

func TestIsTargetYear(t *testing.T) {
	for _, y := range []int64{2018, 2019, 2020} {
		if !IsTargetYear(y) {
			t.Fatalf("%d should be a target year", y)
		}
	}
	for _, y := range []int64{2017, 2021, 0} {
		if IsTargetYear(y) {
			t.Fatalf("%d should not be a target year", y)
		}
	}
}
