package toasttest

import (
	"sync"

	"github.com/vango-dev/toast/pkg/toast"
)

// Event is one captured Emit call.
type Event struct {
	Name string
	Data any
}

// Emitter implements toast.Emitter and captures emitted events.
type Emitter struct {
	mu     sync.Mutex
	events []Event
}

var _ toast.Emitter = (*Emitter)(nil)

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Emit records the event.
func (e *Emitter) Emit(name string, data any) {
	e.mu.Lock()
	e.events = append(e.events, Event{Name: name, Data: data})
	e.mu.Unlock()
}

// Events returns the captured events.
func (e *Emitter) Events() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

// Details returns the data of every event as the payload map built by
// toast.Payload. Events carrying other data are skipped.
func (e *Emitter) Details() []map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []map[string]any
	for _, ev := range e.events {
		if m, ok := ev.Data.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
