package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// BodyFunc implements one code body in Go.
type BodyFunc func(ctx context.Context, args []cty.Value) (cty.Value, error)

// FuncEvaluator is an engine.Evaluator that looks code bodies up by their
// source text and counts how often each ran.
type FuncEvaluator struct {
	mu     sync.Mutex
	bodies map[string]BodyFunc
	calls  map[string]int
}

// NewFuncEvaluator creates an evaluator from source text to implementation.
func NewFuncEvaluator(bodies map[string]BodyFunc) *FuncEvaluator {
	return &FuncEvaluator{bodies: bodies, calls: map[string]int{}}
}

// Evaluate implements engine.Evaluator.
func (e *FuncEvaluator) Evaluate(ctx context.Context, body model.CodeBody, args []cty.Value) (cty.Value, error) {
	e.mu.Lock()
	fn, ok := e.bodies[body.Source]
	e.calls[body.Source]++
	e.mu.Unlock()
	if !ok {
		return cty.NilVal, fmt.Errorf("no test body for %q", body.Source)
	}
	return fn(ctx, args)
}

// Calls returns how many times a body was evaluated.
func (e *FuncEvaluator) Calls(src string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[src]
}
