package engine

import (
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// IsReady reports whether a module may execute in this frame. Input and
// callback modules are always ready, comments never are, and every other
// module is ready once every wire targeting it has a produced source value.
// A module without incoming wires is vacuously ready.
//
// Within one activation readiness only ever goes from false to true: produced
// values are never removed.
func (f *Frame) IsReady(module int) bool {
	if module < 0 || module >= len(f.graph.Modules) {
		return false
	}
	switch f.graph.Modules[module].Kind() {
	case model.KindInput, model.KindCallback:
		return true
	case model.KindComment:
		return false
	}

	f.tree.dataMu.RLock()
	defer f.tree.dataMu.RUnlock()
	for _, w := range f.graph.Wires {
		if w.Target.Module != module {
			continue
		}
		if _, ok := f.valueLocked(w.Source.Module, w.Source.Terminal); !ok {
			return false
		}
	}
	return true
}

// gatherInputs collects the values arriving at a module, keyed by target
// terminal. When several wires reach the same terminal the last one in wire
// sequence order wins.
func (f *Frame) gatherInputs(module int) map[string]cty.Value {
	f.tree.dataMu.RLock()
	defer f.tree.dataMu.RUnlock()
	in := map[string]cty.Value{}
	for _, w := range f.graph.Wires {
		if w.Target.Module != module {
			continue
		}
		if v, ok := f.valueLocked(w.Source.Module, w.Source.Terminal); ok {
			in[w.Target.Terminal] = v
		}
	}
	return in
}
