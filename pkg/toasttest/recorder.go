package toasttest

import (
	"slices"
	"sync"
	"testing"

	"github.com/vango-dev/toast/pkg/toast"
)

// Recorder keeps every change published by a store.
type Recorder struct {
	mu      sync.Mutex
	changes []toast.Change
	stop    func()
}

// Record subscribes a new Recorder to s.
func Record(s *toast.Store) *Recorder {
	r := &Recorder{}
	r.stop = s.Subscribe(r.add)
	return r
}

func (r *Recorder) add(ch toast.Change) {
	r.mu.Lock()
	r.changes = append(r.changes, ch)
	r.mu.Unlock()
}

// Stop unsubscribes the recorder.
func (r *Recorder) Stop() {
	r.stop()
}

// Changes returns the recorded changes in delivery order.
func (r *Recorder) Changes() []toast.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.changes)
}

// Kinds returns the kinds of the recorded changes.
func (r *Recorder) Kinds() []toast.ChangeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]toast.ChangeKind, len(r.changes))
	for i, ch := range r.changes {
		kinds[i] = ch.Kind
	}
	return kinds
}

// Last returns the most recent change.
func (r *Recorder) Last() (toast.Change, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.changes) == 0 {
		return toast.Change{}, false
	}
	return r.changes[len(r.changes)-1], true
}

// Reset forgets the recorded changes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.changes = nil
	r.mu.Unlock()
}

// ExpectKinds fails the test unless exactly the given kinds were recorded, in order.
func (r *Recorder) ExpectKinds(t testing.TB, want ...toast.ChangeKind) {
	t.Helper()
	if got := r.Kinds(); !slices.Equal(got, want) {
		t.Errorf("expected changes %v, got %v", want, got)
	}
}

// ExpectIDs fails the test unless s holds toasts with exactly these ids, in order.
func ExpectIDs(t testing.TB, s *toast.Store, want ...int) {
	t.Helper()
	toasts := s.Toasts()
	got := make([]int, len(toasts))
	for i, ts := range toasts {
		got[i] = ts.ID
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected toast ids %v, got %v", want, got)
	}
}
