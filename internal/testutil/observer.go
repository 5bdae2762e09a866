package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/wiregrid/internal/engine"
)

// RecordingObserver stores every event it receives.
type RecordingObserver struct {
	mu     sync.Mutex
	events []engine.Event
}

// Observe implements engine.Observer.
func (r *RecordingObserver) Observe(_ context.Context, ev engine.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *RecordingObserver) Events() []engine.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.Event(nil), r.events...)
}

// OfType returns the recorded events of one type, in order.
func (r *RecordingObserver) OfType(t engine.EventType) []engine.Event {
	var out []engine.Event
	for _, ev := range r.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// Reset drops all recorded events.
func (r *RecordingObserver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
