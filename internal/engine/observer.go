package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/ctyconv"
	"github.com/zclconf/go-cty/cty"
)

// EventType names something that happened during execution.
type EventType string

const (
	EventFrameStarted    EventType = "frame_started"
	EventFrameFinished   EventType = "frame_finished"
	EventProduced        EventType = "produced"
	EventModuleFaulted   EventType = "module_faulted"
	EventOutputUnbound   EventType = "output_unbound"
	EventInputUnset      EventType = "input_unset"
	EventCallbackInvoked EventType = "callback_invoked"
	EventCascadeAborted  EventType = "cascade_aborted"
)

// Event describes one observation. Module is -1 for frame-level events.
type Event struct {
	Type       EventType
	Frame      uuid.UUID
	Graph      string
	Module     int
	ModuleType string
	Terminal   string
	Value      cty.Value
	Err        error
}

// Observer receives execution events. Observe is called synchronously from
// the cascade and must not block.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) Observe(ctx context.Context, ev Event) {
	for _, o := range m {
		o.Observe(ctx, ev)
	}
}

// LogObserver writes events to the context logger: faults at error level,
// unbound outputs and unset inputs at warn, everything else at debug.
type LogObserver struct{}

func (LogObserver) Observe(ctx context.Context, ev Event) {
	logger := ctxlog.FromContext(ctx)
	attrs := []any{"event", string(ev.Type), "frame", ev.Frame.String(), "graph", ev.Graph}
	if ev.Module >= 0 {
		attrs = append(attrs, "module", ev.Module, "module_type", ev.ModuleType)
	}
	if ev.Terminal != "" {
		attrs = append(attrs, "terminal", ev.Terminal)
	}
	if !ev.Value.IsNull() {
		attrs = append(attrs, "value", ctyconv.ForLogs(ev.Value))
	}

	switch ev.Type {
	case EventModuleFaulted:
		logger.Error("Module faulted.", append(attrs, "error", ev.Err)...)
	case EventCascadeAborted:
		logger.Error("Cascade aborted.", append(attrs, "error", ev.Err)...)
	case EventOutputUnbound:
		logger.Warn("Sub-graph output has no wire in the parent graph.", attrs...)
	case EventInputUnset:
		logger.Warn("Input has neither a parameter nor a default.", attrs...)
	case EventCallbackInvoked:
		logger.Info("Callback invoked.", attrs...)
	default:
		logger.Log(ctx, slog.LevelDebug, "Engine event.", attrs...)
	}
}
