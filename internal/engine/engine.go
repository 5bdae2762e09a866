package engine

import (
	"context"
	"sync"

	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// Resolver maps a sub-graph name to its description.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*model.Graph, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, name string) (*model.Graph, error)

func (f ResolverFunc) Resolve(ctx context.Context, name string) (*model.Graph, error) {
	return f(ctx, name)
}

// Evaluator runs the static code of a code module against positional
// arguments ordered by the body's declared parameters.
type Evaluator interface {
	Evaluate(ctx context.Context, body model.CodeBody, args []cty.Value) (cty.Value, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, body model.CodeBody, args []cty.Value) (cty.Value, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, body model.CodeBody, args []cty.Value) (cty.Value, error) {
	return f(ctx, body, args)
}

// Limits bounds a single cascade.
type Limits struct {
	// MaxDepth is the deepest nesting of module executions, counting
	// sub-graph activations and re-entrant callback invocations.
	MaxDepth int
	// MaxSteps is the total number of module executions in one cascade.
	MaxSteps int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxDepth: 512, MaxSteps: 100000}
}

// Engine holds the collaborators shared by every frame it creates.
type Engine struct {
	resolver  Resolver
	evaluator Evaluator
	observer  Observer
	limits    Limits

	validated sync.Map // *model.Graph -> struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver replaces the default LogObserver.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLimits sets the cascade limits. Non-positive fields keep their defaults.
func WithLimits(l Limits) Option {
	return func(e *Engine) {
		if l.MaxDepth > 0 {
			e.limits.MaxDepth = l.MaxDepth
		}
		if l.MaxSteps > 0 {
			e.limits.MaxSteps = l.MaxSteps
		}
	}
}

// New creates an engine. A nil resolver or evaluator is allowed; composed or
// code modules then fault with ErrNoResolver or ErrNoEvaluator.
func New(resolver Resolver, evaluator Evaluator, opts ...Option) *Engine {
	e := &Engine{
		resolver:  resolver,
		evaluator: evaluator,
		observer:  LogObserver{},
		limits:    DefaultLimits(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Limits returns the cascade limits in effect.
func (e *Engine) Limits() Limits {
	return e.limits
}

// NewFrame validates g and creates a root frame for it.
func (e *Engine) NewFrame(g *model.Graph) (*Frame, error) {
	if err := model.Validate(g); err != nil {
		return nil, err
	}
	e.validated.Store(g, struct{}{})
	return newFrame(e, g, nil, &tree{}), nil
}

// Start creates a root frame for g and runs it with params.
func (e *Engine) Start(ctx context.Context, g *model.Graph, params map[string]cty.Value) (*Frame, error) {
	f, err := e.NewFrame(g)
	if err != nil {
		return nil, err
	}
	if err := f.Run(ctx, params); err != nil {
		return f, err
	}
	return f, nil
}
