package app

import (
	"sync/atomic"
	"time"

	"github.com/dshills/blockpad/internal/document/enforce"
)

// Metrics counts what the application did. All methods are safe for
// concurrent use.
type Metrics struct {
	// Frame timing
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMinNs   atomic.Int64
	frameMaxNs   atomic.Int64
	lastFrameNs  atomic.Int64

	// Transactions by enforcer outcome
	accepted  atomic.Uint64
	rewritten atomic.Uint64
	rejected  atomic.Uint64

	// Detection responses
	detectApplied   atomic.Uint64
	detectDiscarded atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	m.frameMinNs.Store(1<<63 - 1)
	return m
}

// RecordFrame records the time one paint took.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	m.lastFrameNs.Store(ns)

	for {
		old := m.frameMinNs.Load()
		if ns >= old || m.frameMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.frameMaxNs.Load()
		if ns <= old || m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordVerdict counts one filtered transaction.
func (m *Metrics) RecordVerdict(v enforce.Verdict) {
	switch v.Action {
	case enforce.Accepted:
		m.accepted.Add(1)
	case enforce.Rewritten:
		m.rewritten.Add(1)
	case enforce.Rejected:
		m.rejected.Add(1)
	}
}

// RecordDetection counts one detection response.
func (m *Metrics) RecordDetection(applied bool) {
	if applied {
		m.detectApplied.Add(1)
	} else {
		m.detectDiscarded.Add(1)
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frameCount := m.frameCount.Load()
	var avgFrameNs int64
	if frameCount > 0 {
		avgFrameNs = m.frameTotalNs.Load() / int64(frameCount)
	}
	minFrameNs := m.frameMinNs.Load()
	if minFrameNs == 1<<63-1 {
		minFrameNs = 0
	}

	return MetricsSnapshot{
		Uptime:              time.Since(m.startTime),
		FrameCount:          frameCount,
		AvgFrameTimeNs:      avgFrameNs,
		MinFrameTimeNs:      minFrameNs,
		MaxFrameTimeNs:      m.frameMaxNs.Load(),
		LastFrameNs:         m.lastFrameNs.Load(),
		Accepted:            m.accepted.Load(),
		Rewritten:           m.rewritten.Load(),
		Rejected:            m.rejected.Load(),
		DetectionsApplied:   m.detectApplied.Load(),
		DetectionsDiscarded: m.detectDiscarded.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime              time.Duration
	FrameCount          uint64
	AvgFrameTimeNs      int64
	MinFrameTimeNs      int64
	MaxFrameTimeNs      int64
	LastFrameNs         int64
	Accepted            uint64
	Rewritten           uint64
	Rejected            uint64
	DetectionsApplied   uint64
	DetectionsDiscarded uint64
}

// Transactions returns the number of filtered transactions.
func (s MetricsSnapshot) Transactions() uint64 {
	return s.Accepted + s.Rewritten + s.Rejected
}

// RejectRate returns the percentage of rejected transactions.
func (s MetricsSnapshot) RejectRate() float64 {
	total := s.Transactions()
	if total == 0 {
		return 0
	}
	return float64(s.Rejected) / float64(total) * 100
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
