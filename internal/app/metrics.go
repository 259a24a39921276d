// Package app provides the main application structure and coordination.
package app

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics counts what the event loop did. Counters are atomic so a
// snapshot can be taken from any goroutine.
type Metrics struct {
	// Event loop
	keys       atomic.Uint64
	clicks     atomic.Uint64
	interrupts atomic.Uint64
	eventNs    atomic.Int64
	events     atomic.Uint64
	panics     atomic.Uint64

	// Rendering
	renders     atomic.Uint64
	renderNs    atomic.Int64
	maxRenderNs atomic.Int64

	// Edits
	commits    atomic.Uint64
	rejections atomic.Uint64
	stale      atomic.Uint64
	reloads    atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordEvent records handling of one backend event.
func (m *Metrics) RecordEvent(duration time.Duration) {
	m.events.Add(1)
	m.eventNs.Add(duration.Nanoseconds())
}

// RecordKey records a key press.
func (m *Metrics) RecordKey() { m.keys.Add(1) }

// RecordClick records a mouse press.
func (m *Metrics) RecordClick() { m.clicks.Add(1) }

// RecordInterrupt records a function run on the loop.
func (m *Metrics) RecordInterrupt() { m.interrupts.Add(1) }

// RecordPanic records a recovered handler panic.
func (m *Metrics) RecordPanic() { m.panics.Add(1) }

// RecordCommit records an accepted write.
func (m *Metrics) RecordCommit() { m.commits.Add(1) }

// RecordRejection records a write refused by validation.
func (m *Metrics) RecordRejection() { m.rejections.Add(1) }

// RecordStale records a commit whose row had vanished.
func (m *Metrics) RecordStale() { m.stale.Add(1) }

// RecordReload records a settings or dataset reload.
func (m *Metrics) RecordReload() { m.reloads.Add(1) }

// RecordRender records frame render timing.
func (m *Metrics) RecordRender(duration time.Duration) {
	ns := duration.Nanoseconds()
	m.renders.Add(1)
	m.renderNs.Add(ns)
	for {
		old := m.maxRenderNs.Load()
		if ns <= old || m.maxRenderNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Uptime:      time.Since(m.startTime),
		Events:      m.events.Load(),
		Keys:        m.keys.Load(),
		Clicks:      m.clicks.Load(),
		Interrupts:  m.interrupts.Load(),
		Panics:      m.panics.Load(),
		Renders:     m.renders.Load(),
		MaxRender:   time.Duration(m.maxRenderNs.Load()),
		Commits:     m.commits.Load(),
		Rejections:  m.rejections.Load(),
		StaleWrites: m.stale.Load(),
		Reloads:     m.reloads.Load(),
	}
	if s.Events > 0 {
		s.AvgEvent = time.Duration(m.eventNs.Load() / int64(s.Events))
	}
	if s.Renders > 0 {
		s.AvgRender = time.Duration(m.renderNs.Load() / int64(s.Renders))
	}
	return s
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime      time.Duration
	Events      uint64
	AvgEvent    time.Duration
	Keys        uint64
	Clicks      uint64
	Interrupts  uint64
	Panics      uint64
	Renders     uint64
	AvgRender   time.Duration
	MaxRender   time.Duration
	Commits     uint64
	Rejections  uint64
	StaleWrites uint64
	Reloads     uint64
}

// LogValue implements slog.LogValuer.
func (s MetricsSnapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("uptime", s.Uptime),
		slog.Uint64("events", s.Events),
		slog.Uint64("keys", s.Keys),
		slog.Uint64("clicks", s.Clicks),
		slog.Uint64("renders", s.Renders),
		slog.Duration("avgRender", s.AvgRender),
		slog.Duration("maxRender", s.MaxRender),
		slog.Uint64("commits", s.Commits),
		slog.Uint64("rejections", s.Rejections),
		slog.Uint64("stale", s.StaleWrites),
		slog.Uint64("panics", s.Panics),
	)
}
