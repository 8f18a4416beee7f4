package toasttest

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vango-dev/toast/pkg/toast"
)

// Clock is a toast.Clock that only moves when Advance is called. Time is
// kept by a clockwork fake clock; callbacks run synchronously inside
// Advance, in deadline order, which clockwork's own AfterFunc does not
// guarantee: it starts each callback on a new goroutine and returns
// before they have run.
type Clock struct {
	fake  clockwork.FakeClock
	start time.Time

	mu     sync.Mutex
	seq    int
	timers []*timer
}

var _ toast.Clock = (*Clock)(nil)

type timer struct {
	clock   *Clock
	at      time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

// NewClock creates a manual clock at elapsed time zero.
func NewClock() *Clock {
	fake := clockwork.NewFakeClock()
	return &Clock{fake: fake, start: fake.Now()}
}

// AfterFunc implements toast.Clock.
func (c *Clock) AfterFunc(d time.Duration, f func()) toast.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &timer{clock: c, at: c.fake.Now().Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Stop implements toast.Timer.
func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, running every timer that comes due.
// Callbacks run on the calling goroutine without the clock lock held.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.fake.Now().Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.fake.Advance(target.Sub(c.fake.Now()))
			c.timers = pruned(c.timers)
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.fake.Advance(next.at.Sub(c.fake.Now()))
		c.mu.Unlock()

		next.fn()
	}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	return c.fake.Now()
}

// Elapsed returns how far the clock has been advanced.
func (c *Clock) Elapsed() time.Duration {
	return c.fake.Since(c.start)
}

// Pending returns the number of timers that are neither stopped nor fired.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(pruned(c.timers))
}

func (c *Clock) nextDueLocked(target time.Time) *timer {
	var next *timer
	for _, t := range c.timers {
		if t.stopped || t.fired || t.at.After(target) {
			continue
		}
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// pruned returns the live timers.
func pruned(timers []*timer) []*timer {
	live := make([]*timer, 0, len(timers))
	for _, t := range timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	return live
}
