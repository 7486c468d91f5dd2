package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by a pipeline run. Match them with errors.Is.
var (
	// ErrNetwork: transport failure or non-success status while fetching.
	ErrNetwork = errors.New("network error")
	// ErrShape: payload or record does not match the expected structure.
	ErrShape = errors.New("shape error")
	// ErrPersistence: the store rejected a write.
	ErrPersistence = errors.New("persistence error")
	// ErrQuery: aggregate query or view failed, including cast failures.
	ErrQuery = errors.New("query error")
)

// PipelineError ties a failed operation to its error kind and cause
type PipelineError struct {
	Kind error
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NetworkError(op string, err error) error {
	return &PipelineError{Kind: ErrNetwork, Op: op, Err: err}
}

func ShapeError(op string, err error) error {
	return &PipelineError{Kind: ErrShape, Op: op, Err: err}
}

func PersistenceError(op string, err error) error {
	return &PipelineError{Kind: ErrPersistence, Op: op, Err: err}
}

func QueryError(op string, err error) error {
	return &PipelineError{Kind: ErrQuery, Op: op, Err: err}
}

// KindOf returns the error kind carried by err, or nil when it has none.
func KindOf(err error) error {
	for _, kind := range []error{ErrNetwork, ErrShape, ErrPersistence, ErrQuery} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
