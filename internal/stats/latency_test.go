package stats

import (
	"sync"
	"testing"
	"time"
)

func TestLatencySnapshotPercentiles(t *testing.T) {
	l := NewLatency(time.Hour, 0)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		l.Record(time.Duration(ms) * time.Millisecond)
	}

	snap := l.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("count = %d, want 5", snap.Count)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"min", snap.MinMs, 100},
		{"max", snap.MaxMs, 500},
		{"avg", snap.AvgMs, 300},
		{"p50", snap.P50Ms, 300},
		{"p95", snap.P95Ms, 480},
		{"p99", snap.P99Ms, 496},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if snap.Window != "1h0m0s" {
		t.Errorf("window = %q", snap.Window)
	}
}

func TestLatencyFractionalMilliseconds(t *testing.T) {
	l := NewLatency(time.Hour, 0)
	l.Record(250 * time.Microsecond)
	if got := l.Snapshot().MaxMs; got != 0.25 {
		t.Errorf("max = %v, want 0.25", got)
	}
}

func TestLatencyPrunesExpiredSamples(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLatency(time.Minute, 0)
	l.now = func() time.Time { return now }

	l.Record(10 * time.Millisecond)
	now = now.Add(2 * time.Minute)
	if got := l.Snapshot().Count; got != 0 {
		t.Fatalf("count after expiry = %d, want 0", got)
	}

	l.Record(20 * time.Millisecond)
	snap := l.Snapshot()
	if snap.Count != 1 || snap.MinMs != 20 {
		t.Fatalf("got count=%d min=%v, want 1 and 20", snap.Count, snap.MinMs)
	}
}

func TestLatencyCapsSamples(t *testing.T) {
	l := NewLatency(time.Hour, 3)
	for i := 1; i <= 5; i++ {
		l.Record(time.Duration(i) * time.Millisecond)
	}
	snap := l.Snapshot()
	if snap.Count != 3 {
		t.Fatalf("count = %d, want 3", snap.Count)
	}
	if snap.MinMs != 3 || snap.MaxMs != 5 {
		t.Errorf("kept min=%v max=%v, want newest samples 3..5", snap.MinMs, snap.MaxMs)
	}
}

func TestLatencyClampsNegative(t *testing.T) {
	l := NewLatency(time.Hour, 0)
	l.Record(-time.Second)
	snap := l.Snapshot()
	if snap.Count != 1 || snap.MaxMs != 0 {
		t.Errorf("got count=%d max=%v, want 1 and 0", snap.Count, snap.MaxMs)
	}
}

func TestLatencyEmpty(t *testing.T) {
	snap := NewLatency(0, 0).Snapshot()
	if snap.Count != 0 || snap.P99Ms != 0 {
		t.Errorf("empty snapshot = %+v", snap)
	}
}

func TestLatencyConcurrentRecord(t *testing.T) {
	l := NewLatency(time.Hour, 0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Record(time.Millisecond)
				_ = l.Snapshot()
			}
		}()
	}
	wg.Wait()
	if got := l.Snapshot().Count; got != 400 {
		t.Errorf("count = %d, want 400", got)
	}
}
