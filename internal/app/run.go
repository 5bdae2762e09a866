package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/ctyconv"
	"github.com/specialistvlad/wiregrid/internal/trigger"
)

// Run activates the root graph, prints its outputs and, when triggers are
// bound or Listen is set, keeps serving until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")
	defer a.closeTrace()

	if a.config.HealthcheckPort > 0 {
		a.healthCheckServer()
		defer func() { _ = a.closeHealthCheckServer() }()
	}

	a.logger.Info("Starting graph.", "graph", a.root.Name, "modules", len(a.root.Modules), "params", len(a.config.Params))
	f, err := a.engine.Start(ctx, a.root, a.config.Params)
	if f != nil {
		a.setFrame(f)
	}
	if err != nil {
		return fmt.Errorf("run graph %q: %w", a.root.Name, err)
	}
	a.logger.Info("Initial cascade finished.", "frame", f.ID().String())
	a.printOutputs()

	if len(a.config.Bindings) > 0 {
		io, err := trigger.Connect(ctx, a.config.SocketIO)
		if err != nil {
			return err
		}
		defer io.Disconnect()
		if err := trigger.Bind(ctx, trigger.FromSocket(io), f, a.config.Bindings); err != nil {
			return err
		}
	}

	if len(a.config.Bindings) > 0 || a.config.Listen {
		a.logger.Info("Listening for events. Press Ctrl+C to stop.")
		<-ctx.Done()
		a.logger.Info("Shutting down.")
		a.printOutputs()
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) printOutputs() {
	f := a.Frame()
	if f == nil {
		return
	}
	outputs := f.Outputs()
	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.outW, "%s = %s\n", name, ctyconv.Format(outputs[name]))
	}
}

func (a *App) closeTrace() {
	if err := a.trace.Close(); err != nil {
		a.logger.Error("Closing trace file failed.", "error", err)
	}
}
