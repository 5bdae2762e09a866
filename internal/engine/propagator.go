package engine

import (
	"context"
	"errors"

	"github.com/zclconf/go-cty/cty"
)

// Run activates a root frame. Every module that is ready before anything has
// been produced (input and callback modules, plus modules without incoming
// wires) executes in module order, and each production cascades along the
// wires until nothing new becomes ready. Run returns when the cascade is
// exhausted, not when every module has executed.
//
// Only fatal errors are returned: ErrUnboundedCascade, the context error,
// ErrAlreadyRun or ErrCrossTreeInvoke. Module faults are reported to the
// observer.
func (f *Frame) Run(ctx context.Context, params map[string]cty.Value) error {
	if f.parent != nil {
		return errors.New("engine: child frames are run by their composed module")
	}
	ctx, w, nested, release, err := f.beginWave(ctx)
	if err != nil {
		return err
	}
	defer release()
	err = f.run(ctx, w, params)
	if err != nil && !nested && !errors.Is(err, ErrAlreadyRun) {
		f.observe(ctx, Event{Type: EventCascadeAborted, Module: -1, Err: err})
	}
	return err
}

func (f *Frame) run(ctx context.Context, w *wave, params map[string]cty.Value) error {
	if f.markRan() {
		return ErrAlreadyRun
	}
	f.params = params

	logger := f.logger(ctx)
	logger.Info("Frame run started.", "modules", len(f.graph.Modules), "wires", len(f.graph.Wires))
	f.observe(ctx, Event{Type: EventFrameStarted, Module: -1})

	for i := range f.graph.Modules {
		if w.done(f, i) || !f.IsReady(i) {
			continue
		}
		if err := w.execute(ctx, f, i); err != nil {
			return err
		}
	}

	f.observe(ctx, Event{Type: EventFrameFinished, Module: -1})
	logger.Info("Frame run finished.")
	return nil
}

// propagate executes, in wire sequence order, every target of a wire leaving
// (module, terminal) that is ready and has not executed in the current wave.
func (w *wave) propagate(ctx context.Context, f *Frame, module int, terminal string) error {
	logger := f.logger(ctx)
	for _, wire := range f.graph.Wires {
		if wire.Source.Module != module || wire.Source.Terminal != terminal {
			continue
		}
		target := wire.Target.Module
		if w.done(f, target) {
			continue
		}
		if !f.IsReady(target) {
			logger.Debug("Target not ready yet.", "wire", wire.String())
			continue
		}
		logger.Debug("Target ready, executing.", "wire", wire.String())
		if err := w.execute(ctx, f, target); err != nil {
			return err
		}
	}
	return nil
}

// produce records a value, reports it, and propagates it.
func (w *wave) produce(ctx context.Context, f *Frame, module int, terminal string, v cty.Value) error {
	f.setValue(module, terminal, v)
	f.setState(module, StateProduced)
	f.observe(ctx, Event{Type: EventProduced, Module: module, Terminal: terminal, Value: v})
	return w.propagate(ctx, f, module, terminal)
}
