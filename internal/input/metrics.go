package input

import (
	"sync/atomic"
	"time"
)

// Metrics counts dispatcher activity.
type Metrics struct {
	keyEvents     atomic.Uint64
	charEvents    atomic.Uint64
	pointerEvents atomic.Uint64
	unmatchedKeys atomic.Uint64
	commandsSent  atomic.Uint64
	sendFailures  atomic.Uint64
	dragsSent     atomic.Uint64
	dragsHeld     atomic.Uint64

	peakLatency atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// recordLatency keeps the peak handling latency.
func (m *Metrics) recordLatency(latency time.Duration) {
	ns := latency.Nanoseconds()
	for {
		current := m.peakLatency.Load()
		if ns <= current {
			return
		}
		if m.peakLatency.CompareAndSwap(current, ns) {
			return
		}
	}
}

func (m *Metrics) recordSend(err error) {
	if err != nil {
		m.sendFailures.Add(1)
		return
	}
	m.commandsSent.Add(1)
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	KeyEvents     uint64
	CharEvents    uint64
	PointerEvents uint64
	UnmatchedKeys uint64
	CommandsSent  uint64
	SendFailures  uint64
	DragsSent     uint64
	DragsHeldBack uint64

	PeakLatency time.Duration

	CommandsPerSecond float64
	Uptime            time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	uptime := time.Since(m.startTime)
	snap := MetricsSnapshot{
		KeyEvents:     m.keyEvents.Load(),
		CharEvents:    m.charEvents.Load(),
		PointerEvents: m.pointerEvents.Load(),
		UnmatchedKeys: m.unmatchedKeys.Load(),
		CommandsSent:  m.commandsSent.Load(),
		SendFailures:  m.sendFailures.Load(),
		DragsSent:     m.dragsSent.Load(),
		DragsHeldBack: m.dragsHeld.Load(),
		PeakLatency:   time.Duration(m.peakLatency.Load()),
		Uptime:        uptime,
	}
	if uptime > 0 {
		snap.CommandsPerSecond = float64(snap.CommandsSent) / uptime.Seconds()
	}
	return snap
}
