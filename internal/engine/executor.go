package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// execute runs one module according to its kind. Module faults are reported
// and swallowed; only errors that abort the cascade are returned.
func (w *wave) execute(ctx context.Context, f *Frame, module int) error {
	if err := w.enter(ctx); err != nil {
		return err
	}
	defer w.leave()

	w.mark(f, module)
	m := f.graph.Modules[module]
	f.setState(module, StateExecuting)

	switch m.Kind() {
	case model.KindInput:
		return w.execInput(ctx, f, module, m)
	case model.KindCallback:
		return w.execCallback(ctx, f, module)
	case model.KindCodeBody:
		return w.execCode(ctx, f, module, m)
	case model.KindOutput:
		return w.execOutput(ctx, f, module, m)
	case model.KindComposed:
		return w.execComposed(ctx, f, module, m)
	default:
		f.setState(module, StatePending)
		return nil
	}
}

func (w *wave) execInput(ctx context.Context, f *Frame, module int, m model.Module) error {
	name := m.Name()
	v, ok := f.params[name]
	if !ok {
		v, ok = m.Default()
	}
	if !ok {
		v = cty.NullVal(cty.DynamicPseudoType)
		f.observe(ctx, Event{Type: EventInputUnset, Module: module, Terminal: name})
	}
	return w.produce(ctx, f, module, model.TerminalOut, v)
}

func (w *wave) execCallback(ctx context.Context, f *Frame, module int) error {
	cb := &Callback{frame: f, module: module}
	f.setCallback(module, cb)
	return w.produce(ctx, f, module, model.TerminalCallbackFunction, cb.Value())
}

func (w *wave) execCode(ctx context.Context, f *Frame, module int, m model.Module) error {
	if f.engine.evaluator == nil {
		w.fault(ctx, f, module, &CodeBodyError{Graph: f.graph.Name, Module: module, Err: ErrNoEvaluator})
		return nil
	}

	body := m.CodeBody()
	in := f.gatherInputs(module)
	args := make([]cty.Value, len(body.Params))
	for i, name := range body.Params {
		if v, ok := in[name]; ok {
			args[i] = v
		} else {
			args[i] = cty.NullVal(cty.DynamicPseudoType)
		}
	}

	v, err := w.evaluate(ctx, f, body, args)
	if fatal := w.budget.err; fatal != nil {
		return fatal
	}
	if err == nil {
		if v.Type() == cty.NilType {
			v = cty.NullVal(cty.DynamicPseudoType)
		} else if !v.IsWhollyKnown() {
			err = errors.New("result is not fully known")
		}
	}
	if err != nil {
		w.fault(ctx, f, module, &CodeBodyError{Graph: f.graph.Name, Module: module, Err: err})
		return nil
	}
	return w.produce(ctx, f, module, model.TerminalOut, v)
}

func (w *wave) evaluate(ctx context.Context, f *Frame, body model.CodeBody, args []cty.Value) (v cty.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f.engine.evaluator.Evaluate(ctx, body, args)
}

func (w *wave) execOutput(ctx context.Context, f *Frame, module int, m model.Module) error {
	v := cty.NullVal(cty.DynamicPseudoType)
	f.tree.dataMu.RLock()
	for _, wire := range f.graph.Wires {
		if wire.Target.Module != module {
			continue
		}
		if got, ok := f.valueLocked(wire.Source.Module, wire.Source.Terminal); ok {
			v = got
		}
	}
	f.tree.dataMu.RUnlock()

	f.setValue(module, model.TerminalIn, v)
	f.setState(module, StateProduced)
	f.observe(ctx, Event{Type: EventProduced, Module: module, Terminal: model.TerminalIn, Value: v})
	if f.parent == nil {
		return nil
	}

	parent, slot, name := f.parent.Frame, f.parent.Module, m.Name()
	if !parent.graph.HasOutgoing(model.Endpoint{Module: slot, Terminal: name}) {
		parent.observe(ctx, Event{Type: EventOutputUnbound, Module: slot, Terminal: name, Value: v})
	}
	return w.produce(ctx, parent, slot, name, v)
}

func (w *wave) execComposed(ctx context.Context, f *Frame, module int, m model.Module) error {
	name := m.Subgraph()
	g, err := f.engine.resolve(ctx, name)
	if err != nil {
		w.fault(ctx, f, module, &ResolutionError{Graph: f.graph.Name, Module: module, Subgraph: name, Err: err})
		return nil
	}

	params := m.Defaults()
	for terminal, v := range f.gatherInputs(module) {
		params[terminal] = v
	}

	child := newFrame(f.engine, g, &ParentLink{Frame: f, Module: module}, f.tree)
	f.setChild(module, child)
	f.logger(ctx).Debug("Activating sub-graph.", "module", module, "subgraph", name, "child", child.id.String())
	if err := child.run(ctx, w, params); err != nil {
		return err
	}
	if f.State(module) == StateExecuting {
		f.setState(module, StateProduced)
	}
	return nil
}

func (w *wave) fault(ctx context.Context, f *Frame, module int, err error) {
	f.setState(module, StateFaulted)
	f.observe(ctx, Event{Type: EventModuleFaulted, Module: module, Err: err})
}

func (e *Engine) resolve(ctx context.Context, name string) (*model.Graph, error) {
	if e.resolver == nil {
		return nil, ErrNoResolver
	}
	g, err := e.resolver.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("resolver returned no graph for %q", name)
	}
	if _, ok := e.validated.Load(g); !ok {
		if err := model.Validate(g); err != nil {
			return nil, err
		}
		e.validated.Store(g, struct{}{})
	}
	return g, nil
}
