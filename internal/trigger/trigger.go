// Package trigger turns external events into callback invocations on a
// running root frame.
package trigger

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/ctyconv"
	"github.com/specialistvlad/wiregrid/internal/engine"
	"github.com/zishang520/engine.io/v2/types"
)

// Binding routes an event to a callback module. Target is either the module
// index or the callback's name.
type Binding struct {
	Event  string
	Target string
}

// ParseBinding parses the "event=target" form.
func ParseBinding(s string) (Binding, error) {
	event, target, ok := strings.Cut(s, "=")
	event, target = strings.TrimSpace(event), strings.TrimSpace(target)
	if !ok || event == "" || target == "" {
		return Binding{}, fmt.Errorf("invalid binding %q: expected <event>=<callback index or name>", s)
	}
	return Binding{Event: event, Target: target}, nil
}

func (b Binding) String() string { return b.Event + "=" + b.Target }

// Subscriber registers handlers for named events.
type Subscriber interface {
	Subscribe(event string, handler func(args ...any))
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(event string, handler func(args ...any))

func (f SubscriberFunc) Subscribe(event string, handler func(args ...any)) { f(event, handler) }

// FromEmitter adapts an engine.io event emitter.
func FromEmitter(em types.EventEmitter) Subscriber {
	return SubscriberFunc(func(event string, handler func(args ...any)) {
		em.On(types.EventName(event), handler)
	})
}

// Bind resolves every binding against f and subscribes a handler that invokes
// the callback with the event payload as arguments. Invocation errors are
// logged; they do not unsubscribe the handler.
func Bind(ctx context.Context, sub Subscriber, f *engine.Frame, bindings []Binding) error {
	handles := make([]*engine.Callback, len(bindings))
	for i, b := range bindings {
		h, err := lookup(f, b.Target)
		if err != nil {
			return fmt.Errorf("binding %s: %w", b, err)
		}
		handles[i] = h
	}

	logger := ctxlog.FromContext(ctx)
	for i, b := range bindings {
		b, h := b, handles[i]
		sub.Subscribe(b.Event, func(payload ...any) {
			if ctx.Err() != nil {
				return
			}
			args, err := ctyconv.FromGoSlice(payload)
			if err != nil {
				logger.Error("Cannot convert event payload.", "event", b.Event, "error", err)
				return
			}
			if err := h.Invoke(ctx, args...); err != nil {
				logger.Error("Triggered callback failed.", "event", b.Event, "callback", h.String(), "error", err)
				return
			}
			logger.Debug("Triggered callback.", "event", b.Event, "callback", h.String(), "args", len(args))
		})
		logger.Info("Bound event to callback.", "event", b.Event, "callback", h.String())
	}
	return nil
}

func lookup(f *engine.Frame, target string) (*engine.Callback, error) {
	if idx, err := strconv.Atoi(target); err == nil {
		h, ok := f.Callback(idx)
		if !ok {
			return nil, fmt.Errorf("module %d is not an activated callback", idx)
		}
		return h, nil
	}
	h, ok := f.CallbackByName(target)
	if !ok {
		return nil, fmt.Errorf("no activated callback named %q", target)
	}
	return h, nil
}
