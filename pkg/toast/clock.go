package toast

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped the timer before it fired.
	Stop() bool
}

// Clock schedules removal timers. Tests swap in a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Clockwork adapts a clockwork clock for the store.
func Clockwork(c clockwork.Clock) Clock {
	return clockworkClock{c}
}

// SystemClock schedules removal timers on the wall clock.
func SystemClock() Clock {
	return Clockwork(clockwork.NewRealClock())
}

type clockworkClock struct {
	clock clockwork.Clock
}

func (c clockworkClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.clock.AfterFunc(d, f)
}
