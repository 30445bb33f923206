package scheduler

import (
	"sort"
	"sync"
	"time"
)

// fakeClock fires timers only when Advance moves past them
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, running due callbacks in fire order
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// AdvanceTo moves the clock to an absolute instant
func (c *fakeClock) AdvanceTo(at time.Time) {
	c.Advance(at.Sub(c.Now()))
}

func (c *fakeClock) nextDueLocked(target time.Time) *fakeTimer {
	var next *fakeTimer
	for _, t := range c.timers {
		if t.stopped || t.fired || t.at.After(target) {
			continue
		}
		if next == nil || t.at.Before(next.at) {
			next = t
		}
	}
	return next
}

// active returns the fire instants of timers neither stopped nor fired
func (c *fakeClock) active() []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	var at []time.Time
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			at = append(at, t.at)
		}
	}
	sort.Slice(at, func(i, j int) bool { return at[i].Before(at[j]) })
	return at
}

// pendingCallbacks returns the callbacks of timers neither stopped nor fired
func (c *fakeClock) pendingCallbacks() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fs []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			fs = append(fs, t.f)
		}
	}
	return fs
}
