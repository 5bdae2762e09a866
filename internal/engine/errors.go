package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnboundedCascade is returned when a cascade exceeds the configured
	// depth or step limit. It aborts the whole cascade.
	ErrUnboundedCascade = errors.New("unbounded cascade")

	// ErrAlreadyRun is returned by Run on a frame that has already run.
	ErrAlreadyRun = errors.New("frame has already run")

	// ErrCrossTreeInvoke is returned when a cascade of one frame tree runs or
	// invokes a callback of another tree. Only the tree's own cascade may
	// nest.
	ErrCrossTreeInvoke = errors.New("trigger on another frame tree inside a running cascade")

	// ErrNoResolver faults composed modules of an engine built without a resolver.
	ErrNoResolver = errors.New("no sub-graph resolver configured")

	// ErrNoEvaluator faults code modules of an engine built without an evaluator.
	ErrNoEvaluator = errors.New("no code-body evaluator configured")
)

// ResolutionError reports a composed module whose sub-graph could not be
// resolved or activated. The module produces nothing.
type ResolutionError struct {
	Graph    string
	Module   int
	Subgraph string
	Err      error
}

func (e *ResolutionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("graph %q module %d: resolve sub-graph %q: %v", e.Graph, e.Module, e.Subgraph, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ResolutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CodeBodyError reports a code module whose evaluation failed or panicked.
// The module produces nothing.
type CodeBodyError struct {
	Graph  string
	Module int
	Err    error
}

func (e *CodeBodyError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("graph %q module %d: code body: %v", e.Graph, e.Module, e.Err)
}

// Unwrap exposes the underlying error.
func (e *CodeBodyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
