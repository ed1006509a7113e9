package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks view loop performance.
type Metrics struct {
	// Frame timing
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMinNs   atomic.Int64
	frameMaxNs   atomic.Int64
	lastFrameNs  atomic.Int64

	// Update application
	updateCount    atomic.Uint64
	updateTotalNs  atomic.Int64
	updatesIgnored atomic.Uint64
	malformed      atomic.Uint64
	desyncs        atomic.Uint64

	// Input posted to the loop
	inputCount   atomic.Uint64
	inputDropped atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so first frame will be smaller
	m.frameMinNs.Store(1<<63 - 1)
	return m
}

// RecordFrame records frame timing.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	m.lastFrameNs.Store(ns)

	for {
		current := m.frameMinNs.Load()
		if ns >= current || m.frameMinNs.CompareAndSwap(current, ns) {
			break
		}
	}
	for {
		current := m.frameMaxNs.Load()
		if ns <= current || m.frameMaxNs.CompareAndSwap(current, ns) {
			break
		}
	}
}

// RecordUpdate records the time taken to apply one update.
func (m *Metrics) RecordUpdate(duration time.Duration) {
	m.updateCount.Add(1)
	m.updateTotalNs.Add(duration.Nanoseconds())
}

// RecordIgnoredUpdate counts an update received after the view failed.
func (m *Metrics) RecordIgnoredUpdate() {
	m.updatesIgnored.Add(1)
}

// RecordMalformed counts an update dropped for not matching the op grammar.
func (m *Metrics) RecordMalformed() {
	m.malformed.Add(1)
}

// RecordDesync counts a desynchronized update.
func (m *Metrics) RecordDesync() {
	m.desyncs.Add(1)
}

// RecordInput counts an input event posted to the loop.
func (m *Metrics) RecordInput() {
	m.inputCount.Add(1)
}

// RecordInputDropped counts an input event that arrived after the loop exited.
func (m *Metrics) RecordInputDropped() {
	m.inputDropped.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frameCount := m.frameCount.Load()
	updateCount := m.updateCount.Load()

	var avgFrameNs int64
	if frameCount > 0 {
		avgFrameNs = m.frameTotalNs.Load() / int64(frameCount)
	}

	var avgUpdateNs int64
	if updateCount > 0 {
		avgUpdateNs = m.updateTotalNs.Load() / int64(updateCount)
	}

	minFrameNs := m.frameMinNs.Load()
	if minFrameNs == 1<<63-1 {
		minFrameNs = 0
	}

	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		FrameCount:     frameCount,
		AvgFrameTimeNs: avgFrameNs,
		MinFrameTimeNs: minFrameNs,
		MaxFrameTimeNs: m.frameMaxNs.Load(),
		LastFrameNs:    m.lastFrameNs.Load(),
		UpdateCount:    updateCount,
		AvgUpdateNs:    avgUpdateNs,
		UpdatesIgnored: m.updatesIgnored.Load(),
		Malformed:      m.malformed.Load(),
		Desyncs:        m.desyncs.Load(),
		InputCount:     m.inputCount.Load(),
		InputDropped:   m.inputDropped.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	FrameCount     uint64
	AvgFrameTimeNs int64
	MinFrameTimeNs int64
	MaxFrameTimeNs int64
	LastFrameNs    int64
	UpdateCount    uint64
	AvgUpdateNs    int64
	UpdatesIgnored uint64
	Malformed      uint64
	Desyncs        uint64
	InputCount     uint64
	InputDropped   uint64
}

// AvgFPS returns the average frames per second.
func (s MetricsSnapshot) AvgFPS() float64 {
	if s.AvgFrameTimeNs == 0 {
		return 0
	}
	return 1e9 / float64(s.AvgFrameTimeNs)
}
