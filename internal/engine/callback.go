package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// CallbackType is the cty capsule type carrying a *Callback on wires.
var CallbackType = cty.CapsuleWithOps("callback", reflect.TypeOf(Callback{}), &cty.CapsuleOps{
	GoString: func(v any) string {
		return v.(*Callback).String()
	},
	TypeGoString: func(reflect.Type) string {
		return "engine.CallbackType"
	},
})

// Callback is the invocable handle a callback module produces on its
// "callbackFunction" terminal. It stays valid after the run that created it
// has returned.
type Callback struct {
	frame  *Frame
	module int
}

// CallbackFromValue extracts the handle from a value of CallbackType.
func CallbackFromValue(v cty.Value) (*Callback, bool) {
	if v.IsNull() || !v.IsKnown() || !v.Type().Equals(CallbackType) {
		return nil, false
	}
	cb, ok := v.EncapsulatedValue().(*Callback)
	return cb, ok
}

// Value wraps the handle in a cty value.
func (c *Callback) Value() cty.Value {
	return cty.CapsuleVal(CallbackType, c)
}

// Frame returns the frame owning the callback module.
func (c *Callback) Frame() *Frame { return c.frame }

// Module returns the index of the callback module.
func (c *Callback) Module() int { return c.module }

func (c *Callback) String() string {
	return fmt.Sprintf("callback(%s#%d)", c.frame.graph.Name, c.module)
}

// Invoke records args, as a tuple, on the callback module's "output"
// terminal and propagates it as a cascade of its own. Downstream modules run
// again and overwrite what they produced before.
//
// Invocations from other goroutines wait for any running cascade of the same
// frame tree. An invocation made with a context belonging to an active
// cascade of that tree, for example from inside a code body, nests within it
// and shares its limits. One made inside a cascade of another tree fails with
// ErrCrossTreeInvoke.
func (c *Callback) Invoke(ctx context.Context, args ...cty.Value) error {
	f := c.frame
	ctx, w, nested, release, err := f.beginWave(ctx)
	if err != nil {
		return err
	}
	defer release()

	record := cty.EmptyTupleVal
	if len(args) > 0 {
		record = cty.TupleVal(args)
	}
	f.observe(ctx, Event{Type: EventCallbackInvoked, Module: c.module, Terminal: model.TerminalCallbackOutput, Value: record})

	err = w.resume(ctx, f, c.module, record)
	if err != nil && !nested {
		f.observe(ctx, Event{Type: EventCascadeAborted, Module: c.module, Err: err})
	}
	return err
}

func (w *wave) resume(ctx context.Context, f *Frame, module int, record cty.Value) error {
	if err := w.enter(ctx); err != nil {
		return err
	}
	defer w.leave()
	w.mark(f, module)
	f.setState(module, StateExecuting)
	return w.produce(ctx, f, module, model.TerminalCallbackOutput, record)
}
