// Package deferred provides cancellable delayed callbacks.
//
// An Action is armed with Schedule and disarmed with Cancel. Each Schedule
// issues a new token; a timer expiry only runs the callback if its token is
// still current, so an expiry that raced with Cancel or a later Schedule is
// dropped. Expiries can be routed through a Poster, which lets an event loop
// run the callback on its own goroutine.
package deferred

import (
	"sync"
	"time"
)

// Token identifies one scheduling of an Action.
type Token uint64

// Poster hands fn to another goroutine for execution.
// It reports false if fn could not be delivered.
type Poster func(fn func()) bool

// Option configures an Action.
type Option func(*Action)

// WithClock sets the clock used to arm timers.
func WithClock(c Clock) Option {
	return func(a *Action) {
		a.clock = c
	}
}

// WithPoster routes timer expiries through p instead of running the
// callback on the timer goroutine. An expiry that p refuses is dropped and
// the schedule ends without running the callback.
func WithPoster(p Poster) Option {
	return func(a *Action) {
		a.post = p
	}
}

// Action is a single delayed callback.
//
// Thread-safety: Schedule, Cancel, Fire and Pending may be called from any
// goroutine. The callback never runs while the internal lock is held.
type Action struct {
	mu       sync.Mutex
	delay    time.Duration
	clock    Clock
	post     Poster
	timer    Timer
	seq      uint64
	pending  bool
	callback func()
}

// New creates an action that runs callback delay after Schedule.
func New(delay time.Duration, callback func(), opts ...Option) *Action {
	a := &Action{
		delay:    delay,
		clock:    RealClock{},
		callback: callback,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Delay returns the configured delay.
func (a *Action) Delay() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.delay
}

// SetDelay changes the delay used by later calls to Schedule.
func (a *Action) SetDelay(d time.Duration) {
	a.mu.Lock()
	a.delay = d
	a.mu.Unlock()
}

// Schedule arms the action, replacing any earlier schedule.
func (a *Action) Schedule() Token {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.seq++
	a.pending = true
	tok := Token(a.seq)

	a.timer = a.clock.AfterFunc(a.delay, func() {
		if a.post == nil {
			a.Fire(tok)
			return
		}
		if !a.post(func() { a.Fire(tok) }) {
			a.expire(tok)
		}
	})
	return tok
}

// Cancel disarms the action. Outstanding tokens become stale.
func (a *Action) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.seq++
	a.pending = false
}

// Fire runs the callback if tok is the current, still pending schedule.
// It reports whether the callback ran.
func (a *Action) Fire(tok Token) bool {
	a.mu.Lock()
	if !a.pending || uint64(tok) != a.seq || a.callback == nil {
		a.mu.Unlock()
		return false
	}
	a.pending = false
	a.timer = nil
	a.mu.Unlock()

	a.callback()
	return true
}

// expire ends the schedule tok without running the callback.
func (a *Action) expire(tok Token) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending && uint64(tok) == a.seq {
		a.pending = false
		a.timer = nil
	}
}

// Pending reports whether a schedule is armed and not yet fired.
func (a *Action) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}
