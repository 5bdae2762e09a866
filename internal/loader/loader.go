// Package loader reads graph descriptions from HCL, YAML and JSON files.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/fsutil"
	"github.com/specialistvlad/wiregrid/internal/model"
)

// Extensions lists the file extensions the loader understands.
var Extensions = []string{".hcl", ".yaml", ".yml", ".json"}

// LoadPaths loads every graph file found under the given files and
// directories. Paths that do not exist are skipped; a file reached through
// more than one path is loaded once.
func LoadPaths(ctx context.Context, paths ...string) ([]*model.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Graph loader started.", "path_count", len(paths))

	files, err := fsutil.ResolvePaths(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered graph files.", "count", len(files))

	var graphs []*model.Graph
	for _, file := range files {
		loaded, err := LoadFile(ctx, file)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, loaded...)
	}

	logger.Debug("Graph loading complete.", "graphs", len(graphs))
	return graphs, nil
}

// LoadFile reads one graph file, decodes it according to its extension and
// validates every graph it contains.
func LoadFile(ctx context.Context, path string) ([]*model.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewParseError(path, 0, err)
	}

	var graphs []*model.Graph
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl":
		graphs, err = ParseHCL(path, data)
	case ".yaml", ".yml", ".json":
		graphs, err = ParseYAML(path, data)
	default:
		return nil, NewParseError(path, 0, fmt.Errorf("unsupported file extension %q", ext))
	}
	if err != nil {
		return nil, err
	}
	if len(graphs) == 0 {
		return nil, NewParseError(path, 0, fmt.Errorf("no graph definitions found"))
	}

	logger := ctxlog.FromContext(ctx)
	for _, g := range graphs {
		if err := model.Validate(g); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, ep := range g.FanIn() {
			logger.Warn("Terminal has more than one incoming wire; the last wire wins.", "file", path, "graph", g.Name, "terminal", ep.String())
		}
		logger.Debug("Loaded graph.", "file", path, "graph", g.Name, "modules", len(g.Modules), "wires", len(g.Wires))
	}
	return graphs, nil
}

func parseWire(from, to string) (model.Wire, error) {
	src, err := model.ParseEndpoint(from)
	if err != nil {
		return model.Wire{}, fmt.Errorf("wire source: %w", err)
	}
	dst, err := model.ParseEndpoint(to)
	if err != nil {
		return model.Wire{}, fmt.Errorf("wire target: %w", err)
	}
	return model.Wire{Source: src, Target: dst}, nil
}
