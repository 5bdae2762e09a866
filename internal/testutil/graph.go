package testutil

import (
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// GraphBuilder assembles model.Graph values for tests. Each module method
// returns the index of the module it appended.
type GraphBuilder struct {
	g model.Graph
}

// NewGraph starts a graph with the given name.
func NewGraph(name string) *GraphBuilder {
	return &GraphBuilder{g: model.Graph{Name: name}}
}

// Module appends a module of any type.
func (b *GraphBuilder) Module(typ string, params map[string]cty.Value) int {
	if params == nil {
		params = map[string]cty.Value{}
	}
	b.g.Modules = append(b.g.Modules, model.Module{Type: typ, Params: params})
	return len(b.g.Modules) - 1
}

// Input appends an input module without a default.
func (b *GraphBuilder) Input(name string) int {
	return b.Module(model.TypeInput, map[string]cty.Value{model.ParamName: cty.StringVal(name)})
}

// InputWithDefault appends an input module with a static default.
func (b *GraphBuilder) InputWithDefault(name string, def cty.Value) int {
	return b.Module(model.TypeInput, map[string]cty.Value{
		model.ParamName:    cty.StringVal(name),
		model.ParamDefault: def,
	})
}

// Output appends an output module.
func (b *GraphBuilder) Output(name string) int {
	return b.Module(model.TypeOutput, map[string]cty.Value{model.ParamName: cty.StringVal(name)})
}

// Callback appends a callback module.
func (b *GraphBuilder) Callback(name string) int {
	return b.Module(model.TypeCallback, map[string]cty.Value{model.ParamName: cty.StringVal(name)})
}

// Code appends a code module with the given body and parameter names.
func (b *GraphBuilder) Code(src string, params ...string) int {
	names := make([]cty.Value, len(params))
	for i, p := range params {
		names[i] = cty.StringVal(p)
	}
	list := cty.EmptyTupleVal
	if len(names) > 0 {
		list = cty.TupleVal(names)
	}
	return b.Module(model.TypeCode, map[string]cty.Value{
		model.ParamCode:   cty.StringVal(src),
		model.ParamParams: list,
	})
}

// Composed appends a module activating the named sub-graph with optional
// default parameters.
func (b *GraphBuilder) Composed(subgraph string, defaults map[string]cty.Value) int {
	params := map[string]cty.Value{}
	if len(defaults) > 0 {
		params[model.ParamParams] = cty.ObjectVal(defaults)
	}
	return b.Module(subgraph, params)
}

// Comment appends a decorative comment module.
func (b *GraphBuilder) Comment(text string) int {
	return b.Module(model.TypeComment, map[string]cty.Value{model.ParamText: cty.StringVal(text)})
}

// Wire connects src.srcTerminal to dst.dstTerminal.
func (b *GraphBuilder) Wire(src int, srcTerminal string, dst int, dstTerminal string) *GraphBuilder {
	b.g.Wires = append(b.g.Wires, model.Wire{
		Source: model.Endpoint{Module: src, Terminal: srcTerminal},
		Target: model.Endpoint{Module: dst, Terminal: dstTerminal},
	})
	return b
}

// Build returns the assembled graph.
func (b *GraphBuilder) Build() *model.Graph {
	g := b.g
	return &g
}
