package event

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Handler receives events.
type Handler func(Event)

// Subscription is returned by Subscribe and cancels delivery.
type Subscription struct {
	id      string
	pattern Topic
	bus     *Bus
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Pattern returns the topic pattern.
func (s *Subscription) Pattern() Topic { return s.pattern }

// Cancel stops delivery to this subscription. It is safe to call twice.
func (s *Subscription) Cancel() {
	s.bus.unsubscribe(s.id)
}

type entry struct {
	id      string
	pattern Topic
	handler Handler
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report handler panics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = l
	}
}

// WithPanicHandler sets a callback for recovered handler panics.
func WithPanicHandler(fn func(*PanicError)) Option {
	return func(b *Bus) {
		b.onPanic = fn
	}
}

// Bus delivers events synchronously to matching subscribers.
//
// Subscribe and Cancel are safe for concurrent use. Publish delivers on
// the calling goroutine without holding the lock, so a handler may
// subscribe, cancel or publish again.
type Bus struct {
	mu      sync.RWMutex
	subs    []entry
	logger  *slog.Logger
	onPanic func(*PanicError)

	published uint64
	delivered uint64
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for every topic matching pattern.
func (b *Bus) Subscribe(pattern Topic, handler Handler) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	id := uuid.NewString()
	b.mu.Lock()
	b.subs = append(b.subs, entry{id: id, pattern: pattern, handler: handler})
	b.mu.Unlock()

	return &Subscription{id: id, pattern: pattern, bus: b}, nil
}

func (b *Bus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.subs {
		if e.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every matching subscriber and returns the number
// of handlers that ran without panicking.
func (b *Bus) Publish(ev Event) int {
	if !ev.Topic.IsValid() {
		return 0
	}

	b.mu.RLock()
	matched := make([]entry, 0, len(b.subs))
	for _, e := range b.subs {
		if ev.Topic.Matches(e.pattern) {
			matched = append(matched, e)
		}
	}
	b.mu.RUnlock()

	n := 0
	for _, e := range matched {
		if b.deliver(e, ev) {
			n++
		}
	}

	b.mu.Lock()
	b.published++
	b.delivered += uint64(n)
	b.mu.Unlock()
	return n
}

// Emit is shorthand for Publish(New(t, payload, source)).
func (b *Bus) Emit(t Topic, payload any, source string) int {
	return b.Publish(New(t, payload, source))
}

func (b *Bus) deliver(e entry, ev Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			perr := &PanicError{SubscriptionID: e.id, Topic: ev.Topic, Value: r}
			b.logger.Error("event handler panicked",
				"topic", ev.Topic.String(), "subscription", e.id, "panic", r)
			if b.onPanic != nil {
				b.onPanic(perr)
			}
			ok = false
		}
	}()
	e.handler(ev)
	return true
}

// Stats reports published events and successful deliveries.
func (b *Bus) Stats() (published, delivered uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.published, b.delivered
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
