package app

import (
	"testing"
	"time"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if m == nil {
		t.Fatal("NewMetrics() returned nil")
	}

	snapshot := m.Snapshot()
	if snapshot.FrameCount != 0 {
		t.Errorf("expected 0 frame count, got %d", snapshot.FrameCount)
	}
	if snapshot.MinFrameTimeNs != 0 {
		t.Errorf("expected 0 min frame time (sentinel handled), got %d", snapshot.MinFrameTimeNs)
	}
}

func TestMetrics_RecordFrame(t *testing.T) {
	m := NewMetrics()

	m.RecordFrame(10 * time.Millisecond)
	m.RecordFrame(20 * time.Millisecond)
	m.RecordFrame(5 * time.Millisecond)

	snapshot := m.Snapshot()
	if snapshot.FrameCount != 3 {
		t.Errorf("expected 3 frames, got %d", snapshot.FrameCount)
	}
	if snapshot.MinFrameTimeNs != int64(5*time.Millisecond) {
		t.Errorf("expected min 5ms, got %d ns", snapshot.MinFrameTimeNs)
	}
	if snapshot.MaxFrameTimeNs != int64(20*time.Millisecond) {
		t.Errorf("expected max 20ms, got %d ns", snapshot.MaxFrameTimeNs)
	}
	if snapshot.LastFrameNs != int64(5*time.Millisecond) {
		t.Errorf("expected last 5ms, got %d ns", snapshot.LastFrameNs)
	}
}

func TestMetrics_RecordUpdate(t *testing.T) {
	m := NewMetrics()

	m.RecordUpdate(2 * time.Millisecond)
	m.RecordUpdate(4 * time.Millisecond)
	m.RecordIgnoredUpdate()
	m.RecordMalformed()
	m.RecordDesync()

	snapshot := m.Snapshot()
	if snapshot.UpdateCount != 2 {
		t.Errorf("expected 2 updates, got %d", snapshot.UpdateCount)
	}
	if snapshot.AvgUpdateNs != int64(3*time.Millisecond) {
		t.Errorf("expected avg 3ms, got %d ns", snapshot.AvgUpdateNs)
	}
	if snapshot.UpdatesIgnored != 1 || snapshot.Malformed != 1 || snapshot.Desyncs != 1 {
		t.Errorf("expected one each of ignored, malformed and desync, got %+v", snapshot)
	}
}

func TestMetrics_RecordInput(t *testing.T) {
	m := NewMetrics()

	m.RecordInput()
	m.RecordInput()
	m.RecordInputDropped()

	snapshot := m.Snapshot()
	if snapshot.InputCount != 2 {
		t.Errorf("expected 2 inputs, got %d", snapshot.InputCount)
	}
	if snapshot.InputDropped != 1 {
		t.Errorf("expected 1 dropped input, got %d", snapshot.InputDropped)
	}
}

func TestMetrics_Snapshot_Uptime(t *testing.T) {
	m := NewMetrics()
	time.Sleep(5 * time.Millisecond)

	if m.Snapshot().Uptime < 5*time.Millisecond {
		t.Error("expected uptime of at least 5ms")
	}
}

func TestMetricsSnapshot_AvgFPS(t *testing.T) {
	tests := []struct {
		avgFrameTimeNs int64
		expectedFPS    float64
	}{
		{0, 0},                    // Zero protection
		{16666666, 60.0},          // ~60 FPS
		{33333333, 30.0},          // ~30 FPS
		{1000000000 / 120, 120.0}, // 120 FPS
	}

	for _, tt := range tests {
		snapshot := MetricsSnapshot{AvgFrameTimeNs: tt.avgFrameTimeNs}
		fps := snapshot.AvgFPS()
		if tt.expectedFPS == 0 && fps != 0 {
			t.Errorf("AvgFPS() for 0 ns = %f, expected 0", fps)
		} else if tt.expectedFPS > 0 {
			diff := fps - tt.expectedFPS
			if diff < -1 || diff > 1 {
				t.Errorf("AvgFPS() for %d ns = %f, expected ~%f", tt.avgFrameTimeNs, fps, tt.expectedFPS)
			}
		}
	}
}

func BenchmarkMetrics_RecordFrame(b *testing.B) {
	m := NewMetrics()
	d := 16 * time.Millisecond

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordFrame(d)
	}
}
