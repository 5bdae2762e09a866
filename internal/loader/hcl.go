package loader

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// hclFile decodes all top-level blocks of a graph file.
type hclFile struct {
	Graphs []*hclGraph `hcl:"graph,block"`
}

type hclGraph struct {
	Name        string       `hcl:"name,label"`
	Description string       `hcl:"description,optional"`
	Modules     []*hclModule `hcl:"module,block"`
	Wires       []*hclWire   `hcl:"wire,block"`
}

// hclModule keeps the body undecoded: static params are free-form and are
// evaluated without variables.
type hclModule struct {
	Type string   `hcl:"type,label"`
	Body hcl.Body `hcl:",remain"`
}

type hclWire struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// ParseHCL decodes graph blocks from HCL source.
//
//	graph "double" {
//	  module "input" { name = "x" }
//	  module "code" {
//	    code   = "a * 2"
//	    params = ["a"]
//	  }
//	  wire {
//	    from = "0.out"
//	    to   = "1.a"
//	  }
//	}
func ParseHCL(path string, src []byte) ([]*model.Graph, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, NewParseError(path, diagLine(diags), diags)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, NewParseError(path, diagLine(diags), diags)
	}

	graphs := make([]*model.Graph, 0, len(root.Graphs))
	for _, hg := range root.Graphs {
		g, err := translateGraph(path, hg)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

func translateGraph(path string, hg *hclGraph) (*model.Graph, error) {
	g := &model.Graph{
		Name:        hg.Name,
		Description: hg.Description,
		Modules:     make([]model.Module, 0, len(hg.Modules)),
		Wires:       make([]model.Wire, 0, len(hg.Wires)),
	}

	for _, hm := range hg.Modules {
		params, diags := staticParams(hm.Body)
		if diags.HasErrors() {
			return nil, NewParseError(path, diagLine(diags), diags)
		}
		g.Modules = append(g.Modules, model.Module{Type: hm.Type, Params: params})
	}

	for i, hw := range hg.Wires {
		w, err := parseWire(hw.From, hw.To)
		if err != nil {
			return nil, NewParseError(path, 0, fmt.Errorf("graph %q wire %d: %w", hg.Name, i, err))
		}
		g.Wires = append(g.Wires, w)
	}
	return g, nil
}

func staticParams(body hcl.Body) (map[string]cty.Value, hcl.Diagnostics) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make(map[string]cty.Value, len(attrs))
	for _, name := range names {
		v, valDiags := attrs[name].Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		params[name] = v
	}
	return params, diags
}
