package utils

import (
	"math"
	"sort"
	"sync"
	"time"
)

// defaultLatencyWindow covers a few hours of cycles at the default
// one-minute cadence.
const defaultLatencyWindow = 256

// LatencyTracker keeps a bounded ring of recent cycle durations for
// percentile reporting. Once the window fills, each new sample overwrites
// the oldest one.
type LatencyTracker struct {
	mu     sync.RWMutex
	window []time.Duration
	next   int
}

// NewLatencyTracker sizes the window; size <= 0 selects the default.
func NewLatencyTracker(size int) *LatencyTracker {
	if size <= 0 {
		size = defaultLatencyWindow
	}
	return &LatencyTracker{window: make([]time.Duration, 0, size)}
}

// Observe records one cycle duration.
func (l *LatencyTracker) Observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.window) < cap(l.window) {
		l.window = append(l.window, d)
		return
	}
	l.window[l.next] = d
	l.next = (l.next + 1) % cap(l.window)
}

// Count reports how many samples the window currently holds.
func (l *LatencyTracker) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.window)
}

// Percentile returns the nearest-rank percentile (0..100) over the window,
// or zero when nothing has been observed yet.
func (l *LatencyTracker) Percentile(p float64) time.Duration {
	l.mu.RLock()
	samples := append([]time.Duration(nil), l.window...)
	l.mu.RUnlock()

	if len(samples) == 0 {
		return 0
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	switch {
	case p <= 0:
		return samples[0]
	case p >= 100:
		return samples[len(samples)-1]
	}
	rank := int(math.Ceil(p/100*float64(len(samples)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(samples) {
		rank = len(samples) - 1
	}
	return samples[rank]
}
