package engine_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/specialistvlad/wiregrid/internal/engine"
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/specialistvlad/wiregrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

var errUnknownGraph = errors.New("unknown graph")

func num(n int64) cty.Value { return cty.NumberIntVal(n) }

func requireValue(t *testing.T, want cty.Value, got cty.Value, ok bool) {
	t.Helper()
	require.True(t, ok, "value was not produced")
	require.True(t, want.RawEquals(got), "want %#v, got %#v", want, got)
}

var arithmetic = map[string]testutil.BodyFunc{
	"a * 2": func(_ context.Context, args []cty.Value) (cty.Value, error) {
		return args[0].Multiply(num(2)), nil
	},
	"a + 1": func(_ context.Context, args []cty.Value) (cty.Value, error) {
		return args[0].Add(num(1)), nil
	},
	"p + q": func(_ context.Context, args []cty.Value) (cty.Value, error) {
		return args[0].Add(args[1]), nil
	},
	"args[0][0] * 2": func(_ context.Context, args []cty.Value) (cty.Value, error) {
		return args[0].Index(num(0)).Multiply(num(2)), nil
	},
	"fail": func(context.Context, []cty.Value) (cty.Value, error) {
		return cty.NilVal, errors.New("boom")
	},
	"panic": func(context.Context, []cty.Value) (cty.Value, error) {
		panic("kaboom")
	},
}

type harness struct {
	engine    *engine.Engine
	evaluator *testutil.FuncEvaluator
	observer  *testutil.RecordingObserver
	ctx       context.Context
	logs      *testutil.SafeBuffer
}

func newHarness(t *testing.T, bodies map[string]testutil.BodyFunc, graphs []*model.Graph, opts ...engine.Option) *harness {
	t.Helper()

	merged := map[string]testutil.BodyFunc{}
	for k, v := range arithmetic {
		merged[k] = v
	}
	for k, v := range bodies {
		merged[k] = v
	}

	byName := map[string]*model.Graph{}
	for _, g := range graphs {
		byName[g.Name] = g
	}
	resolver := engine.ResolverFunc(func(_ context.Context, name string) (*model.Graph, error) {
		g, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errUnknownGraph, name)
		}
		return g, nil
	})

	ctx, logs := testutil.LogContext(t)
	h := &harness{
		evaluator: testutil.NewFuncEvaluator(merged),
		observer:  &testutil.RecordingObserver{},
		ctx:       ctx,
		logs:      logs,
	}
	opts = append([]engine.Option{engine.WithObserver(engine.MultiObserver{engine.LogObserver{}, h.observer})}, opts...)
	h.engine = engine.New(resolver, h.evaluator, opts...)
	return h
}

// doubleGraph is input x (default 5) -> a * 2 -> output y.
func doubleGraph() *model.Graph {
	b := testutil.NewGraph("double")
	x := b.InputWithDefault("x", num(5))
	c := b.Code("a * 2", "a")
	y := b.Output("y")
	b.Wire(x, "out", c, "a").Wire(c, "out", y, "in")
	return b.Build()
}

func TestRun_InputCodeOutput(t *testing.T) {
	t.Parallel()

	t.Run("external parameter", func(t *testing.T) {
		h := newHarness(t, nil, nil)
		f, err := h.engine.Start(h.ctx, doubleGraph(), map[string]cty.Value{"x": num(7)})
		require.NoError(t, err)

		v, ok := f.Value(2, model.TerminalIn)
		requireValue(t, num(14), v, ok)
		out := f.Outputs()
		require.Len(t, out, 1)
		requireValue(t, num(14), out["y"], true)
		assert.Contains(t, h.logs.String(), "Frame run started.")
	})

	t.Run("static default", func(t *testing.T) {
		h := newHarness(t, nil, nil)
		f, err := h.engine.Start(h.ctx, doubleGraph(), nil)
		require.NoError(t, err)

		v, ok := f.Value(2, model.TerminalIn)
		requireValue(t, num(10), v, ok)
	})

	t.Run("no parameter and no default", func(t *testing.T) {
		h := newHarness(t, nil, nil)
		b := testutil.NewGraph("bare")
		x := b.Input("x")
		y := b.Output("y")
		b.Wire(x, "out", y, "in")

		f, err := h.engine.Start(h.ctx, b.Build(), nil)
		require.NoError(t, err)

		v, ok := f.Value(y, model.TerminalIn)
		require.True(t, ok)
		assert.True(t, v.IsNull())
		require.Len(t, h.observer.OfType(engine.EventInputUnset), 1)
	})
}

func TestRun_ComposedSubgraph(t *testing.T) {
	t.Parallel()

	sub := testutil.NewGraph("inc")
	n := sub.Input("n")
	c := sub.Code("a + 1", "a")
	n2 := sub.Output("n2")
	sub.Wire(n, "out", c, "a").Wire(c, "out", n2, "in")

	root := testutil.NewGraph("root")
	start := root.InputWithDefault("start", num(0))
	comp := root.Composed("inc", nil)
	result := root.Output("result")
	root.Wire(start, "out", comp, "n").Wire(comp, "n2", result, "in")

	h := newHarness(t, nil, []*model.Graph{sub.Build()})
	f, err := h.engine.Start(h.ctx, root.Build(), map[string]cty.Value{"start": num(4)})
	require.NoError(t, err)

	v, ok := f.Value(result, model.TerminalIn)
	requireValue(t, num(5), v, ok)

	child, ok := f.Child(comp)
	require.True(t, ok)
	link, ok := child.Parent()
	require.True(t, ok)
	assert.Same(t, f, link.Frame)
	assert.Equal(t, comp, link.Module)

	in, ok := child.Value(n, model.TerminalOut)
	requireValue(t, num(4), in, ok)

	assert.Equal(t, engine.StateProduced, f.State(comp))
	assert.ErrorContains(t, child.Run(h.ctx, nil), "child frames")
}

func TestRun_ComposedResolutionFailure(t *testing.T) {
	t.Parallel()

	root := testutil.NewGraph("root")
	start := root.InputWithDefault("start", num(0))
	comp := root.Composed("missing", nil)
	result := root.Output("result")
	root.Wire(start, "out", comp, "n").Wire(comp, "n2", result, "in")

	h := newHarness(t, nil, nil)
	f, err := h.engine.Start(h.ctx, root.Build(), map[string]cty.Value{"start": num(4)})
	require.NoError(t, err)

	assert.Empty(t, f.Produced()[comp])
	_, ok := f.Value(result, model.TerminalIn)
	assert.False(t, ok)
	assert.Equal(t, engine.StateFaulted, f.State(comp))

	faults := h.observer.OfType(engine.EventModuleFaulted)
	require.Len(t, faults, 1)
	var re *engine.ResolutionError
	require.True(t, errors.As(faults[0].Err, &re))
	assert.Equal(t, "missing", re.Subgraph)
	assert.ErrorIs(t, faults[0].Err, errUnknownGraph)
}

func TestRun_ComposedDefaultsAndMultipleOutputs(t *testing.T) {
	t.Parallel()

	sub := testutil.NewGraph("split")
	a := sub.Input("a")
	bIn := sub.Input("b")
	outA := sub.Output("a2")
	outB := sub.Output("b2")
	outC := sub.Output("c")
	sub.Wire(a, "out", outA, "in").Wire(bIn, "out", outB, "in").Wire(bIn, "out", outC, "in")

	root := testutil.NewGraph("root")
	x := root.Input("x")
	comp := root.Composed("split", map[string]cty.Value{"a": num(1), "b": num(2)})
	double := root.Code("a * 2", "a")
	first := root.Output("first")
	second := root.Output("second")
	root.Wire(x, "out", comp, "b").
		Wire(comp, "a2", first, "in").
		Wire(comp, "b2", double, "a").
		Wire(double, "out", second, "in")

	h := newHarness(t, nil, []*model.Graph{sub.Build()})
	f, err := h.engine.Start(h.ctx, root.Build(), map[string]cty.Value{"x": num(10)})
	require.NoError(t, err)

	out := f.Outputs()
	requireValue(t, num(1), out["first"], true)
	requireValue(t, num(20), out["second"], true)

	unbound := h.observer.OfType(engine.EventOutputUnbound)
	require.Len(t, unbound, 1)
	assert.Equal(t, "c", unbound[0].Terminal)
	assert.Equal(t, comp, unbound[0].Module)
	v, ok := f.Value(comp, "c")
	requireValue(t, num(10), v, ok)
}

func TestRun_RecursiveComposition(t *testing.T) {
	t.Parallel()

	countdown := map[string]testutil.BodyFunc{
		"dec": func(_ context.Context, args []cty.Value) (cty.Value, error) {
			n, _ := args[0].AsBigFloat().Int64()
			if n <= 0 {
				return cty.NilVal, errors.New("done")
			}
			return num(n - 1), nil
		},
	}

	b := testutil.NewGraph("countdown")
	n := b.Input("n")
	dec := b.Code("dec", "a")
	self := b.Composed("countdown", nil)
	b.Wire(n, "out", dec, "a").Wire(dec, "out", self, "n")
	g := b.Build()

	h := newHarness(t, countdown, []*model.Graph{g})
	f, err := h.engine.Start(h.ctx, g, map[string]cty.Value{"n": num(3)})
	require.NoError(t, err)

	depth := 0
	for cur := f; ; depth++ {
		next, ok := cur.Child(self)
		if !ok {
			assert.Equal(t, engine.StateFaulted, cur.State(dec))
			break
		}
		cur = next
	}
	assert.Equal(t, 3, depth)
	assert.Equal(t, 4, h.evaluator.Calls("dec"))
}

func TestRun_AlreadyRun(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, nil)
	f, err := h.engine.Start(h.ctx, doubleGraph(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Run(h.ctx, nil), engine.ErrAlreadyRun)
}

func TestNewFrame_RejectsInvalidGraph(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, nil)
	g := doubleGraph()
	g.Wires[0].Target.Module = 42
	_, err := h.engine.NewFrame(g)
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil, nil)
	ctx, cancel := context.WithCancel(h.ctx)
	cancel()

	f, err := h.engine.Start(ctx, doubleGraph(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.Produced())
	assert.Len(t, h.observer.OfType(engine.EventCascadeAborted), 1)
}

func TestRun_MissingCollaborators(t *testing.T) {
	t.Parallel()

	root := testutil.NewGraph("root")
	x := root.InputWithDefault("x", num(1))
	c := root.Code("a * 2", "a")
	comp := root.Composed("anything", nil)
	root.Wire(x, "out", c, "a").Wire(x, "out", comp, "n")

	rec := &testutil.RecordingObserver{}
	e := engine.New(nil, nil, engine.WithObserver(rec))
	f, err := e.Start(context.Background(), root.Build(), nil)
	require.NoError(t, err)

	faults := rec.OfType(engine.EventModuleFaulted)
	require.Len(t, faults, 2)
	assert.ErrorIs(t, faults[0].Err, engine.ErrNoEvaluator)
	assert.ErrorIs(t, faults[1].Err, engine.ErrNoResolver)
	assert.Equal(t, engine.StateFaulted, f.State(c))
}
