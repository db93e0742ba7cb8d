// Package stats keeps rolling latency aggregates for the parse pipeline.
package stats

import (
	"slices"
	"sync"
	"time"
)

const defaultMaxSamples = 4096

type sample struct {
	at time.Time
	d  time.Duration
}

// Snapshot aggregates the samples currently inside the window. Durations are
// reported in fractional milliseconds since a text parse is usually well
// under one.
type Snapshot struct {
	Window string  `json:"window"`
	Count  int     `json:"count"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Latency tracks durations observed within maxAge, keeping at most
// maxSamples of the newest ones.
type Latency struct {
	mu         sync.Mutex
	samples    []sample
	maxAge     time.Duration
	maxSamples int
	now        func() time.Time
}

func NewLatency(maxAge time.Duration, maxSamples int) *Latency {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	if maxSamples <= 0 {
		maxSamples = defaultMaxSamples
	}
	return &Latency{
		samples:    make([]sample, 0, 256),
		maxAge:     maxAge,
		maxSamples: maxSamples,
		now:        time.Now,
	}
}

// Record adds one observation. Negative durations count as zero.
func (l *Latency) Record(d time.Duration) {
	if d < 0 {
		d = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)
	if len(l.samples) >= l.maxSamples {
		drop := len(l.samples) - l.maxSamples + 1
		l.samples = append(l.samples[:0], l.samples[drop:]...)
	}
	l.samples = append(l.samples, sample{at: now, d: d})
}

// Since records the time elapsed from start.
func (l *Latency) Since(start time.Time) {
	l.Record(time.Since(start))
}

func (l *Latency) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(l.now())
	snap := Snapshot{Window: l.maxAge.String()}
	if len(l.samples) == 0 {
		return snap
	}

	values := make([]float64, len(l.samples))
	var sum float64
	for i, s := range l.samples {
		values[i] = float64(s.d) / float64(time.Millisecond)
		sum += values[i]
	}
	slices.Sort(values)

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = sum / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

// Samples are appended in time order, so everything before the first fresh
// sample has expired.
func (l *Latency) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.maxAge)
	i := 0
	for i < len(l.samples) && l.samples[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		l.samples = append(l.samples[:0], l.samples[i:]...)
	}
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return sorted[0]
	case pct >= 100:
		return sorted[len(sorted)-1]
	}

	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}
