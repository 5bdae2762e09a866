package engine

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// tree is shared by a root frame and all of its descendants.
type tree struct {
	// cascadeMu admits one cascade at a time.
	cascadeMu sync.Mutex
	// dataMu guards the produced values, states and child links of every
	// frame in the tree.
	dataMu sync.RWMutex
}

// ParentLink is the back-link from a child frame to the composed module that
// activated it.
type ParentLink struct {
	Frame  *Frame
	Module int
}

// Frame is one activation of a graph description.
type Frame struct {
	id     uuid.UUID
	engine *Engine
	graph  *model.Graph
	parent *ParentLink
	tree   *tree

	ran       bool
	params    map[string]cty.Value
	produced  map[int]map[string]cty.Value
	states    []ModuleState
	children  map[int]*Frame
	callbacks map[int]*Callback
}

func newFrame(e *Engine, g *model.Graph, parent *ParentLink, t *tree) *Frame {
	return &Frame{
		id:        uuid.New(),
		engine:    e,
		graph:     g,
		parent:    parent,
		tree:      t,
		produced:  map[int]map[string]cty.Value{},
		states:    make([]ModuleState, len(g.Modules)),
		children:  map[int]*Frame{},
		callbacks: map[int]*Callback{},
	}
}

// ID returns the activation id.
func (f *Frame) ID() uuid.UUID { return f.id }

// Graph returns the description this frame activates.
func (f *Frame) Graph() *model.Graph { return f.graph }

// Parent returns the parent link of a child frame.
func (f *Frame) Parent() (ParentLink, bool) {
	if f.parent == nil {
		return ParentLink{}, false
	}
	return *f.parent, true
}

// Value returns the value a module produced on a terminal.
func (f *Frame) Value(module int, terminal string) (cty.Value, bool) {
	f.tree.dataMu.RLock()
	defer f.tree.dataMu.RUnlock()
	return f.valueLocked(module, terminal)
}

func (f *Frame) valueLocked(module int, terminal string) (cty.Value, bool) {
	v, ok := f.produced[module][terminal]
	return v, ok
}

// Produced returns a copy of every value produced in this frame, keyed by
// module index and terminal name.
func (f *Frame) Produced() map[int]map[string]cty.Value {
	f.tree.dataMu.RLock()
	defer f.tree.dataMu.RUnlock()
	out := make(map[int]map[string]cty.Value, len(f.produced))
	for i, terms := range f.produced {
		out[i] = maps.Clone(terms)
	}
	return out
}

// Outputs returns the values recorded by the frame's output modules, keyed by
// output name. Outputs that have not received a value are absent.
func (f *Frame) Outputs() map[string]cty.Value {
	f.tree.dataMu.RLock()
	defer f.tree.dataMu.RUnlock()
	out := map[string]cty.Value{}
	for i, m := range f.graph.Modules {
		if m.Kind() != model.KindOutput {
			continue
		}
		if v, ok := f.valueLocked(i, model.TerminalIn); ok {
			out[m.Name()] = v
		}
	}
	return out
}

// Child returns the most recent child frame activated by a composed module.
func (f *Frame) Child(module int) (*Frame, bool) {
	f.tree.dataMu.RLock()
	defer f.tree.dataMu.RUnlock()
	c, ok := f.children[module]
	return c, ok
}

// Callback returns the handle produced by a callback module.
func (f *Frame) Callback(module int) (*Callback, bool) {
	f.tree.dataMu.RLock()
	defer f.tree.dataMu.RUnlock()
	cb, ok := f.callbacks[module]
	return cb, ok
}

// CallbackByName finds the handle of the first callback module whose "name"
// param matches.
func (f *Frame) CallbackByName(name string) (*Callback, bool) {
	for i, m := range f.graph.Modules {
		if m.Kind() == model.KindCallback && m.Name() == name {
			return f.Callback(i)
		}
	}
	return nil, false
}

// State returns the lifecycle state of a module. A pending module whose
// readiness holds reports StateReady.
func (f *Frame) State(module int) ModuleState {
	if module < 0 || module >= len(f.graph.Modules) {
		return StatePending
	}
	f.tree.dataMu.RLock()
	s := f.states[module]
	f.tree.dataMu.RUnlock()
	if s == StatePending && f.IsReady(module) {
		return StateReady
	}
	return s
}

func (f *Frame) setState(module int, s ModuleState) {
	f.tree.dataMu.Lock()
	f.states[module] = s
	f.tree.dataMu.Unlock()
}

func (f *Frame) setValue(module int, terminal string, v cty.Value) {
	f.tree.dataMu.Lock()
	defer f.tree.dataMu.Unlock()
	terms, ok := f.produced[module]
	if !ok {
		terms = map[string]cty.Value{}
		f.produced[module] = terms
	}
	terms[terminal] = v
}

func (f *Frame) setChild(module int, c *Frame) {
	f.tree.dataMu.Lock()
	f.children[module] = c
	f.tree.dataMu.Unlock()
}

func (f *Frame) setCallback(module int, cb *Callback) {
	f.tree.dataMu.Lock()
	f.callbacks[module] = cb
	f.tree.dataMu.Unlock()
}

// markRan flips the ran flag and reports whether it was already set.
func (f *Frame) markRan() bool {
	f.tree.dataMu.Lock()
	defer f.tree.dataMu.Unlock()
	was := f.ran
	f.ran = true
	return was
}

func (f *Frame) observe(ctx context.Context, ev Event) {
	ev.Frame = f.id
	ev.Graph = f.graph.Name
	if ev.Module >= 0 && ev.Module < len(f.graph.Modules) {
		ev.ModuleType = f.graph.Modules[ev.Module].Type
	}
	f.engine.observer.Observe(ctx, ev)
}

func (f *Frame) logger(ctx context.Context) *slog.Logger {
	return ctxlog.FromContext(ctx).With("frame", f.id.String(), "graph", f.graph.Name)
}
