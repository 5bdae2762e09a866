package trigger_test

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/wiregrid/internal/engine"
	"github.com/specialistvlad/wiregrid/internal/hclbody"
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/specialistvlad/wiregrid/internal/testutil"
	"github.com/specialistvlad/wiregrid/internal/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"github.com/zishang520/engine.io/v2/types"
)

func TestParseBinding(t *testing.T) {
	t.Parallel()

	b, err := trigger.ParseBinding(" tick = 3 ")
	require.NoError(t, err)
	assert.Equal(t, trigger.Binding{Event: "tick", Target: "3"}, b)
	assert.Equal(t, "tick=3", b.String())

	for _, bad := range []string{"", "tick", "=3", "tick="} {
		_, err := trigger.ParseBinding(bad)
		assert.Error(t, err, bad)
	}
}

// fakeSubscriber records handlers so tests can fire events synchronously.
type fakeSubscriber map[string][]func(...any)

func (f fakeSubscriber) Subscribe(event string, handler func(args ...any)) {
	f[event] = append(f[event], handler)
}

func (f fakeSubscriber) fire(event string, args ...any) {
	for _, h := range f[event] {
		h(args...)
	}
}

func startCallbackGraph(t *testing.T) (context.Context, *engine.Frame, int, *testutil.SafeBuffer) {
	t.Helper()

	b := testutil.NewGraph("triggered")
	cb := b.Callback("tick")
	c := b.Code("args[0][0].n * 2", "a")
	y := b.Output("y")
	b.Wire(cb, "output", c, "a").Wire(c, "out", y, "in")

	ctx, logs := testutil.LogContext(t)
	f, err := engine.New(nil, hclbody.New()).Start(ctx, b.Build(), nil)
	require.NoError(t, err)
	return ctx, f, y, logs
}

func TestBind_InvokesCallbackWithPayload(t *testing.T) {
	t.Parallel()

	ctx, f, y, logs := startCallbackGraph(t)
	sub := fakeSubscriber{}
	require.NoError(t, trigger.Bind(ctx, sub, f, []trigger.Binding{{Event: "tick", Target: "tick"}}))

	sub.fire("tick", map[string]any{"n": 21.0})
	v, ok := f.Value(y, model.TerminalIn)
	require.True(t, ok)
	assert.True(t, v.Equals(cty.NumberIntVal(42)).True(), "got %#v", v)

	sub.fire("tick", "not an object")
	assert.Contains(t, logs.String(), "Module faulted.")
	v, _ = f.Value(y, model.TerminalIn)
	assert.True(t, v.Equals(cty.NumberIntVal(42)).True(), "a faulted cascade keeps the earlier value")
}

func TestBind_RejectsUnknownTargets(t *testing.T) {
	t.Parallel()

	ctx, f, y, _ := startCallbackGraph(t)
	for _, target := range []string{"nope", "7", "2"} {
		err := trigger.Bind(ctx, fakeSubscriber{}, f, []trigger.Binding{{Event: "tick", Target: target}})
		assert.Error(t, err, target)
	}
	assert.Equal(t, 2, y)

	require.NoError(t, trigger.Bind(ctx, fakeSubscriber{}, f, []trigger.Binding{{Event: "tick", Target: "0"}}))
}

func TestBind_StopsAfterCancel(t *testing.T) {
	t.Parallel()

	ctx, f, y, _ := startCallbackGraph(t)
	ctx, cancel := context.WithCancel(ctx)
	sub := fakeSubscriber{}
	require.NoError(t, trigger.Bind(ctx, sub, f, []trigger.Binding{{Event: "tick", Target: "0"}}))
	cancel()

	sub.fire("tick", map[string]any{"n": 1})
	_, ok := f.Value(y, model.TerminalIn)
	assert.False(t, ok)
}

func TestFromEmitter(t *testing.T) {
	t.Parallel()

	ctx, f, y, _ := startCallbackGraph(t)
	em := types.NewEventEmitter()
	require.NoError(t, trigger.Bind(ctx, trigger.FromEmitter(em), f, []trigger.Binding{{Event: "tick", Target: "tick"}}))

	em.Emit(types.EventName("tick"), map[string]any{"n": 5})
	require.Eventually(t, func() bool {
		v, ok := f.Value(y, model.TerminalIn)
		return ok && v.Equals(cty.NumberIntVal(10)).True()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConnect_RejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := trigger.Connect(context.Background(), trigger.SocketIOConfig{URL: "not a url"})
	assert.Error(t, err)
}
