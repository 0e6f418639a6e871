package pipeline

import (
	"slices"
	"sync"
	"time"
)

// StatsSnapshot aggregates the export latencies inside the window.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	Failed int     `json:"failed"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
	Bytes  int64   `json:"bytes"`
}

type sample struct {
	at    time.Time
	ms    int64
	bytes int64
	ok    bool
}

// LatencyStats keeps export timings for a rolling window.
type LatencyStats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window, now: time.Now}
}

// Record adds a successful export of size bytes.
func (s *LatencyStats) Record(d time.Duration, size int) {
	s.add(sample{ms: max(d.Milliseconds(), 0), bytes: int64(size), ok: true})
}

// RecordFailure counts a failed export. Failures do not affect latency
// percentiles.
func (s *LatencyStats) RecordFailure() {
	s.add(sample{})
}

func (s *LatencyStats) add(sm sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sm.at = s.now()
	s.prune(sm.at)
	s.samples = append(s.samples, sm)
}

func (s *LatencyStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(s.now())

	var snap StatsSnapshot
	var ms []int64
	var sum int64
	for _, sm := range s.samples {
		if !sm.ok {
			snap.Failed++
			continue
		}
		ms = append(ms, sm.ms)
		sum += sm.ms
		snap.Bytes += sm.bytes
	}
	if len(ms) == 0 {
		return snap
	}
	slices.Sort(ms)

	snap.Count = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(sum) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

// prune drops samples older than the window. Samples arrive in time order,
// so the expired ones form a prefix.
func (s *LatencyStats) prune(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.samples) && s.samples[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[lo+1])-float64(sorted[lo]))*frac
}
