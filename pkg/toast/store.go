package toast

import (
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used when no tracer is configured.
const TracerName = "vango/toast"

// ChangeKind describes what happened to the toast list.
type ChangeKind string

const (
	ChangeCreated   ChangeKind = "created"
	ChangeUpdated   ChangeKind = "updated"
	ChangeDismissed ChangeKind = "dismissed"
	ChangeExpired   ChangeKind = "expired"
	ChangeCleared   ChangeKind = "cleared"
)

// Removal reports whether the change took toasts off the list.
func (k ChangeKind) Removal() bool {
	return k == ChangeDismissed || k == ChangeExpired || k == ChangeCleared
}

// Change is delivered to subscribers after every mutation of the list.
type Change struct {
	// Seq increases by one per change. Subscribers can use it to drop
	// notifications that arrive out of order.
	Seq uint64

	Kind ChangeKind

	// Toast is the record that was created, updated or removed.
	// For ChangeCleared it is empty with ID -1.
	Toast Toast

	// Removed holds every toast dropped by ChangeCleared.
	Removed []Toast

	// Toasts is the list as it stood right after the change.
	Toasts []Toast
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the clock used for removal timers.
func WithClock(c Clock) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used by Promise.
func WithTracer(t trace.Tracer) StoreOption {
	return func(s *Store) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithDefaults replaces the initial defaults.
func WithDefaults(d Defaults) StoreOption {
	return func(s *Store) {
		s.defaults = d.clone()
	}
}

// armedTimer is the pending removal of one toast. gen tells a fired
// callback apart from a newer timer armed for the same id.
type armedTimer struct {
	timer Timer
	gen   uint64
}

type subscriber struct {
	id uint64
	fn func(Change)
}

// Store is the ordered list of active toasts.
//
// All methods are safe for concurrent use. Application code normally
// creates one Store and hands it to everything that shows toasts.
type Store struct {
	mu       sync.Mutex
	toasts   []Toast
	defaults Defaults
	nextID   int
	timers   map[int]armedTimer
	gen      uint64
	seq      uint64

	subMu   sync.RWMutex
	subs    []subscriber
	nextSub uint64

	clock  Clock
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates an empty Store.
func New(opts ...StoreOption) *Store {
	s := &Store{
		defaults: DefaultDefaults(),
		timers:   make(map[int]armedTimer),
		clock:    SystemClock(),
		logger:   slog.Default().With("component", "toast"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(TracerName)
	}
	return s
}

// Create appends a toast and returns its id.
// Options are merged onto the defaults for typ.
func (s *Store) Create(msg Message, typ Type, opts ...Option) int {
	return s.Add(msg, typ, opts...).ID
}

// Add is Create returning the stored toast with its merged options. The
// result stays valid after the toast itself expires.
func (s *Store) Add(msg Message, typ Type, opts ...Option) Toast {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	t := Toast{
		ID:      id,
		Message: msg,
		Type:    typ,
		Options: s.defaults.merge(typ, opts),
	}
	s.toasts = append(s.toasts, t)
	s.armLocked(id, t.Options.Duration)
	ch := s.changeLocked(ChangeCreated, t)
	s.mu.Unlock()

	s.logger.Debug("toast created", "id", id, "type", typ, "duration", t.Options.Duration)
	s.notify(ch)
	return t
}

// Default creates a toast of type TypeDefault.
func (s *Store) Default(msg Message, opts ...Option) int {
	return s.Create(msg, TypeDefault, opts...)
}

// Info creates an info toast.
func (s *Store) Info(msg Message, opts ...Option) int {
	return s.Create(msg, TypeInfo, opts...)
}

// Success creates a success toast.
func (s *Store) Success(msg Message, opts ...Option) int {
	return s.Create(msg, TypeSuccess, opts...)
}

// Warning creates a warning toast.
func (s *Store) Warning(msg Message, opts ...Option) int {
	return s.Create(msg, TypeWarning, opts...)
}

// Error creates an error toast.
func (s *Store) Error(msg Message, opts ...Option) int {
	return s.Create(msg, TypeError, opts...)
}

// Update replaces the toast with the given id in place and re-arms its
// removal timer. It reports false, and does nothing else, when no such
// toast exists: a toast that expired while its update was in flight is
// not an error.
func (s *Store) Update(id int, msg Message, typ Type, opts ...Option) bool {
	_, ok := s.Replace(id, msg, typ, opts...)
	return ok
}

// Replace is Update returning the new toast with its merged options.
func (s *Store) Replace(id int, msg Message, typ Type, opts ...Option) (Toast, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return Toast{}, false
	}
	t := Toast{
		ID:      id,
		Message: msg,
		Type:    typ,
		Options: s.defaults.merge(typ, opts),
	}
	s.toasts[i] = t
	s.armLocked(id, t.Options.Duration)
	ch := s.changeLocked(ChangeUpdated, t)
	s.mu.Unlock()

	s.logger.Debug("toast updated", "id", id, "type", typ, "duration", t.Options.Duration)
	s.notify(ch)
	return t, true
}

// Dismiss removes the toast with the given id. It reports whether one was removed.
func (s *Store) Dismiss(id int) bool {
	s.mu.Lock()
	s.disarmLocked(id)
	t, ok := s.removeLocked(id)
	if !ok {
		s.mu.Unlock()
		return false
	}
	ch := s.changeLocked(ChangeDismissed, t)
	s.mu.Unlock()

	s.logger.Debug("toast dismissed", "id", id)
	s.notify(ch)
	return true
}

// Clear removes every toast, sticky ones included, and returns how many
// were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	removed := s.toasts
	s.toasts = nil
	for id, armed := range s.timers {
		armed.timer.Stop()
		delete(s.timers, id)
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return 0
	}
	ch := s.changeLocked(ChangeCleared, Toast{ID: -1})
	ch.Removed = removed
	s.mu.Unlock()

	s.logger.Debug("toasts cleared", "count", len(removed))
	s.notify(ch)
	return len(removed)
}

// SetDefaults merges patch into the store defaults. Toasts already on the
// list keep the options they were created with.
func (s *Store) SetDefaults(patch DefaultsPatch) {
	if patch.IsEmpty() {
		return
	}
	s.mu.Lock()
	next := s.defaults.clone()
	patch.apply(&next)
	s.defaults = next
	s.mu.Unlock()

	s.logger.Debug("toast defaults changed",
		"position", next.Position,
		"duration", next.Duration,
		"dismiss_on_click", next.DismissOnClick)
}

// Defaults returns a copy of the current defaults.
func (s *Store) Defaults() Defaults {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaults.clone()
}

// Toasts returns the active toasts in insertion order.
// The slice is a copy; Props maps are shared and must not be modified.
func (s *Store) Toasts() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Snapshot returns the active toasts together with the Seq of the last
// change applied to them. A consumer that renders the snapshot can skip
// any Change with a Seq at or below it.
func (s *Store) Snapshot() (seq uint64, toasts []Toast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq, s.snapshotLocked()
}

// Get returns the toast with the given id.
func (s *Store) Get(id int) (Toast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.toasts[i], true
	}
	return Toast{}, false
}

// Len returns the number of active toasts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toasts)
}

// Logger returns the store logger.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// Subscribe registers fn to be called after every change. Calls happen on
// the goroutine that made the change, after the store lock is released,
// so fn may read the store. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// notify delivers ch to a copy of the subscriber list.
func (s *Store) notify(ch Change) {
	s.subMu.RLock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.fn(ch)
	}
}

// expire is the removal timer callback.
func (s *Store) expire(id int, gen uint64) {
	s.mu.Lock()
	armed, ok := s.timers[id]
	if !ok || armed.gen != gen {
		// Cancelled or superseded while waiting for the lock.
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	t, ok := s.removeLocked(id)
	if !ok {
		s.mu.Unlock()
		return
	}
	ch := s.changeLocked(ChangeExpired, t)
	s.mu.Unlock()

	s.logger.Debug("toast expired", "id", id)
	s.notify(ch)
}

// armLocked replaces any pending removal of id with one after d.
func (s *Store) armLocked(id int, d time.Duration) {
	s.disarmLocked(id)
	if d <= 0 {
		return
	}
	s.gen++
	gen := s.gen
	s.timers[id] = armedTimer{
		timer: s.clock.AfterFunc(d, func() { s.expire(id, gen) }),
		gen:   gen,
	}
}

func (s *Store) disarmLocked(id int) {
	if armed, ok := s.timers[id]; ok {
		armed.timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Store) indexLocked(id int) int {
	for i := range s.toasts {
		if s.toasts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(id int) (Toast, bool) {
	i := s.indexLocked(id)
	if i < 0 {
		return Toast{}, false
	}
	t := s.toasts[i]
	s.toasts = append(s.toasts[:i:i], s.toasts[i+1:]...)
	return t, true
}

func (s *Store) snapshotLocked() []Toast {
	out := make([]Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

func (s *Store) changeLocked(kind ChangeKind, t Toast) Change {
	s.seq++
	return Change{
		Seq:    s.seq,
		Kind:   kind,
		Toast:  t,
		Toasts: s.snapshotLocked(),
	}
}
