// Package library keeps named graph descriptions and resolves composed
// modules against them.
package library

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/engine"
	"github.com/specialistvlad/wiregrid/internal/loader"
	"github.com/specialistvlad/wiregrid/internal/model"
)

var (
	// ErrNotFound is returned when no graph is registered under a name.
	ErrNotFound = errors.New("graph not found")
	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("duplicate graph name")
)

var _ engine.Resolver = (*Library)(nil)

// Library is a thread-safe name to graph map.
type Library struct {
	mu     sync.RWMutex
	graphs map[string]*model.Graph
}

// New creates a library holding the given graphs.
func New(graphs ...*model.Graph) (*Library, error) {
	l := &Library{graphs: make(map[string]*model.Graph)}
	if err := l.Add(graphs...); err != nil {
		return nil, err
	}
	return l, nil
}

// Add registers graphs under their names. Nothing is registered if any of
// them is invalid or already present.
func (l *Library) Add(graphs ...*model.Graph) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pending := make(map[string]struct{}, len(graphs))
	for _, g := range graphs {
		if err := model.Validate(g); err != nil {
			return err
		}
		if _, ok := l.graphs[g.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicate, g.Name)
		}
		if _, ok := pending[g.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicate, g.Name)
		}
		pending[g.Name] = struct{}{}
	}
	for _, g := range graphs {
		l.graphs[g.Name] = g
	}
	return nil
}

// Get returns the graph registered under name.
func (l *Library) Get(name string) (*model.Graph, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.graphs[name]
	return g, ok
}

// Names returns the registered names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.graphs))
	for name := range l.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve implements engine.Resolver.
func (l *Library) Resolve(ctx context.Context, name string) (*model.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, ok := l.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return g, nil
}

// LoadPaths loads every graph file under paths and registers its graphs.
func (l *Library) LoadPaths(ctx context.Context, paths ...string) error {
	graphs, err := loader.LoadPaths(ctx, paths...)
	if err != nil {
		return err
	}
	if err := l.Add(graphs...); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Library loaded.", "graphs", len(graphs), "total", len(l.Names()))
	return nil
}
