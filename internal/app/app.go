package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/engine"
	"github.com/specialistvlad/wiregrid/internal/hclbody"
	"github.com/specialistvlad/wiregrid/internal/library"
	"github.com/specialistvlad/wiregrid/internal/loader"
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/specialistvlad/wiregrid/internal/trace"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	ctx     context.Context
	config  *Config
	library *library.Library
	root    *model.Graph
	engine  *engine.Engine
	trace   *trace.Recorder

	httpServer *http.Server

	mu    sync.RWMutex
	frame *engine.Frame
}

// NewApp loads the root graph and every graph it may compose, and wires the
// engine. Results are written to outW and logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	inFile, err := loader.LoadFile(ctx, cfg.GraphPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph file: %w", err)
	}

	lib, err := library.New()
	if err != nil {
		return nil, err
	}
	// Only named paths are loaded; the graph file's directory may hold traces
	// and other non-graph files.
	paths := append([]string{cfg.GraphPath}, cfg.LibraryPaths...)
	if err := lib.LoadPaths(ctx, paths...); err != nil {
		return nil, fmt.Errorf("failed to load graph library: %w", err)
	}
	logger.Debug("Graph library loaded.", "graphs", lib.Names())

	name := cfg.GraphName
	if name == "" {
		name = inFile[0].Name
	}
	root, ok := lib.Get(name)
	if !ok {
		return nil, fmt.Errorf("root graph %q: %w", name, library.ErrNotFound)
	}

	observers := engine.MultiObserver{engine.LogObserver{}}
	var rec *trace.Recorder
	if cfg.TracePath != "" {
		rec, err = trace.Open(cfg.TracePath, cfg.TraceValues)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		observers = append(observers, rec)
		logger.Debug("Trace recorder enabled.", "path", cfg.TracePath)
	}

	eng := engine.New(lib, hclbody.New(), engine.WithObserver(observers), engine.WithLimits(cfg.Limits))

	return &App{
		outW:    outW,
		logger:  logger,
		ctx:     ctx,
		config:  cfg,
		library: lib,
		root:    root,
		engine:  eng,
		trace:   rec,
	}, nil
}

// Root returns the graph the app activates.
func (a *App) Root() *model.Graph { return a.root }

// Library returns the graphs available for composition.
func (a *App) Library() *library.Library { return a.library }

// Frame returns the root frame of the latest run, or nil before Run.
func (a *App) Frame() *engine.Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frame
}

func (a *App) setFrame(f *engine.Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frame = f
}
