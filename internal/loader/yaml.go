package loader

import (
	"fmt"

	"github.com/specialistvlad/wiregrid/internal/ctyconv"
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// yamlDocument accepts either a single inline graph or a list under "graphs".
type yamlDocument struct {
	yamlGraph `yaml:",inline"`
	Graphs    []yamlGraph `yaml:"graphs"`
}

type yamlGraph struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Modules     []yamlModule `yaml:"modules"`
	Wires       []yamlWire   `yaml:"wires"`
}

type yamlModule struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params"`
}

type yamlWire struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ParseYAML decodes graphs from YAML source. JSON documents are accepted as
// the YAML subset they are.
func ParseYAML(path string, src []byte) ([]*model.Graph, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, NewParseError(path, extractLine(err), err)
	}

	docs := doc.Graphs
	if doc.Name != "" || len(doc.Modules) > 0 {
		docs = append([]yamlGraph{doc.yamlGraph}, docs...)
	}

	graphs := make([]*model.Graph, 0, len(docs))
	for _, yg := range docs {
		g, err := yg.translate()
		if err != nil {
			return nil, NewParseError(path, 0, err)
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

func (yg yamlGraph) translate() (*model.Graph, error) {
	g := &model.Graph{
		Name:        yg.Name,
		Description: yg.Description,
		Modules:     make([]model.Module, 0, len(yg.Modules)),
		Wires:       make([]model.Wire, 0, len(yg.Wires)),
	}

	for i, ym := range yg.Modules {
		params := make(map[string]cty.Value, len(ym.Params))
		for name, raw := range ym.Params {
			v, err := ctyconv.FromGo(raw)
			if err != nil {
				return nil, fmt.Errorf("graph %q module %d param %q: %w", yg.Name, i, name, err)
			}
			params[name] = v
		}
		g.Modules = append(g.Modules, model.Module{Type: ym.Type, Params: params})
	}

	for i, yw := range yg.Wires {
		w, err := parseWire(yw.From, yw.To)
		if err != nil {
			return nil, fmt.Errorf("graph %q wire %d: %w", yg.Name, i, err)
		}
		g.Wires = append(g.Wires, w)
	}
	return g, nil
}
