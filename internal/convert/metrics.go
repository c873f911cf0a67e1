package convert

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// MetricsSnapshot is a point-in-time aggregate of conversion latencies.
type MetricsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Metrics tracks recent conversion latencies within a rolling window.
type Metrics struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

// NewMetrics builds a tracker keeping samples for maxAge. A zero or
// negative maxAge means one hour.
func NewMetrics(maxAge time.Duration) *Metrics {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Metrics{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// Record adds one conversion duration in milliseconds. Negative values
// are clamped to zero.
func (m *Metrics) Record(durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked(now)
	m.samples = append(m.samples, sample{
		timestamp:  now,
		durationMs: durationMs,
	})
}

// Snapshot aggregates the samples still inside the window. An empty
// window yields the zero snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked(now)
	if len(m.samples) == 0 {
		return MetricsSnapshot{}
	}

	values := make([]int64, 0, len(m.samples))
	var sum int64
	for _, sm := range m.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return MetricsSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

func (m *Metrics) pruneLocked(now time.Time) {
	cutoff := now.Add(-m.maxAge)
	writeIdx := 0
	for _, sm := range m.samples {
		if !sm.timestamp.Before(cutoff) {
			m.samples[writeIdx] = sm
			writeIdx++
		}
	}
	m.samples = m.samples[:writeIdx]
}

// percentile reads pct from an already-sorted slice, interpolating
// between neighbors when the rank is fractional.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
