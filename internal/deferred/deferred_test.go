package deferred

import (
	"sync/atomic"
	"testing"
	"time"
)

// queue collects posted functions the way an event loop would.
type queue struct {
	fns []func()
}

func (q *queue) post(fn func()) bool {
	q.fns = append(q.fns, fn)
	return true
}

func (q *queue) drain() {
	fns := q.fns
	q.fns = nil
	for _, fn := range fns {
		fn()
	}
}

func TestAction_FiresAfterDelay(t *testing.T) {
	clock := NewManualClock()
	var calls int
	a := New(150*time.Millisecond, func() { calls++ }, WithClock(clock))

	a.Schedule()
	clock.Advance(149 * time.Millisecond)
	if calls != 0 {
		t.Fatalf("calls = %d before delay, want 0", calls)
	}
	if !a.Pending() {
		t.Error("Pending() = false, want true")
	}

	clock.Advance(time.Millisecond)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if a.Pending() {
		t.Error("Pending() = true after fire")
	}
}

func TestAction_Cancel(t *testing.T) {
	clock := NewManualClock()
	var calls int
	a := New(50*time.Millisecond, func() { calls++ }, WithClock(clock))

	a.Schedule()
	a.Cancel()
	clock.Advance(time.Second)

	if calls != 0 {
		t.Errorf("calls = %d, want 0 (canceled)", calls)
	}
	if clock.Pending() != 0 {
		t.Errorf("clock.Pending() = %d, want 0", clock.Pending())
	}
}

func TestAction_RescheduleReplaces(t *testing.T) {
	clock := NewManualClock()
	var calls int
	a := New(100*time.Millisecond, func() { calls++ }, WithClock(clock))

	a.Schedule()
	clock.Advance(60 * time.Millisecond)
	a.Schedule()
	clock.Advance(60 * time.Millisecond)
	if calls != 0 {
		t.Fatalf("calls = %d, want 0 (first schedule replaced)", calls)
	}
	clock.Advance(40 * time.Millisecond)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestAction_StaleTokenIgnored(t *testing.T) {
	var calls int
	a := New(time.Hour, func() { calls++ })

	old := a.Schedule()
	a.Cancel()
	current := a.Schedule()

	if a.Fire(old) {
		t.Error("Fire(old) = true, want false")
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
	if !a.Fire(current) {
		t.Error("Fire(current) = false, want true")
	}
	if a.Fire(current) {
		t.Error("second Fire(current) = true, want false")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	a.Cancel()
}

// An expiry that is already queued on the loop when Cancel runs must not
// fire the callback.
func TestAction_PostedExpiryAfterCancel(t *testing.T) {
	clock := NewManualClock()
	q := &queue{}
	var calls int
	a := New(10*time.Millisecond, func() { calls++ }, WithClock(clock), WithPoster(q.post))

	a.Schedule()
	clock.Advance(10 * time.Millisecond)
	if len(q.fns) != 1 {
		t.Fatalf("posted = %d, want 1", len(q.fns))
	}
	if calls != 0 {
		t.Fatal("callback ran on the timer instead of the loop")
	}

	a.Cancel()
	a.Schedule()
	q.drain()
	if calls != 0 {
		t.Errorf("calls = %d, want 0 (stale expiry)", calls)
	}

	clock.Advance(10 * time.Millisecond)
	q.drain()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestAction_PosterRefusedDropsExpiry(t *testing.T) {
	clock := NewManualClock()
	var calls int
	a := New(time.Millisecond, func() { calls++ }, WithClock(clock),
		WithPoster(func(func()) bool { return false }))

	a.Schedule()
	clock.Advance(time.Millisecond)

	if calls != 0 {
		t.Errorf("calls = %d, want 0: a refused expiry must not run on the timer goroutine", calls)
	}
	if a.Pending() {
		t.Error("Pending() = true after a refused expiry")
	}
}

func TestAction_RealClock(t *testing.T) {
	var calls atomic.Int32
	a := New(20*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 10; i++ {
		a.Schedule()
	}
	time.Sleep(80 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestAction_SetDelay(t *testing.T) {
	clock := NewManualClock()
	var calls int
	a := New(time.Second, func() { calls++ }, WithClock(clock))
	a.SetDelay(5 * time.Millisecond)

	if a.Delay() != 5*time.Millisecond {
		t.Errorf("Delay() = %v", a.Delay())
	}
	a.Schedule()
	clock.Advance(5 * time.Millisecond)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
