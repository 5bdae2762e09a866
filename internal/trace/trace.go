// Package trace records execution events as JSON lines.
package trace

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/specialistvlad/wiregrid/internal/ctyconv"
	"github.com/specialistvlad/wiregrid/internal/engine"
)

// Options describes recorder configuration supplied at creation time.
type Options struct {
	Writer        io.Writer
	HumanReadable bool
	// Values includes produced values in the trace.
	Values bool
}

// Recorder is an engine.Observer that writes one zerolog entry per event.
type Recorder struct {
	base   zerolog.Logger
	values bool
	closer io.Closer
}

var _ engine.Observer = (*Recorder)(nil)

// New creates a Recorder based on Options.
func New(opts Options) *Recorder {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	var output io.Writer = zerolog.SyncWriter(writer)
	if opts.HumanReadable {
		console := zerolog.NewConsoleWriter()
		console.Out = writer
		console.TimeFormat = time.RFC3339
		output = zerolog.SyncWriter(console)
	}

	return &Recorder{
		base:   zerolog.New(output).With().Timestamp().Logger(),
		values: opts.Values,
	}
}

// Open creates (or truncates) the file at path and records into it.
func Open(path string, values bool) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	r := New(Options{Writer: f, Values: values})
	r.closer = f
	return r, nil
}

// Close releases the file opened by Open.
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Observe implements engine.Observer.
func (r *Recorder) Observe(_ context.Context, ev engine.Event) {
	if r == nil {
		return
	}

	var entry *zerolog.Event
	switch ev.Type {
	case engine.EventModuleFaulted, engine.EventCascadeAborted:
		entry = r.base.Error()
	case engine.EventOutputUnbound, engine.EventInputUnset:
		entry = r.base.Warn()
	default:
		entry = r.base.Info()
	}

	entry = entry.
		Str("event", string(ev.Type)).
		Str("frame", ev.Frame.String()).
		Str("graph", ev.Graph)
	if ev.Module >= 0 {
		entry = entry.Int("module", ev.Module).Str("module_type", ev.ModuleType)
	}
	if ev.Terminal != "" {
		entry = entry.Str("terminal", ev.Terminal)
	}
	if r.values && !ev.Value.IsNull() {
		entry = entry.Str("value", ctyconv.Format(ev.Value))
	}
	if ev.Err != nil {
		entry = entry.Err(ev.Err)
	}
	entry.Send()
}
