package history

import (
	"sync"
	"time"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
	"github.com/scaleguardhq/scaleguard-engine/internal/topology"
)

// Aggregate series names tracked alongside the snapshot buffer.
const (
	MetricRiskScore   = "risk_score"
	MetricCPUUsage    = "cpu_usage"
	MetricMemoryUsage = "memory_usage"
	MetricErrorRate   = "error_rate"
	MetricLatency     = "latency"
)

const seriesCapacity = 1000

var trackedMetrics = []string{MetricRiskScore, MetricCPUUsage, MetricMemoryUsage, MetricErrorRate, MetricLatency}

// Tracker is a bounded time-series store of system snapshots. It keeps five
// independent scalar aggregate series for O(1) recent-window queries without
// rescanning the snapshot buffer. Reads may run concurrently with the single
// appending writer.
type Tracker struct {
	mu        sync.RWMutex
	snapshots *ring[models.MetricSnapshot]
	series    map[string]*ring[models.MetricPoint]
	now       func() time.Time
}

// NewTracker sizes the snapshot buffer for retentionHours at one sample per
// minute (default 48h -> 2880 snapshots when retentionHours <= 0).
func NewTracker(retentionHours int) *Tracker {
	if retentionHours <= 0 {
		retentionHours = 48
	}
	return NewTrackerWithCapacity(retentionHours * 60)
}

// NewTrackerWithCapacity builds a tracker with an explicit snapshot
// capacity.
func NewTrackerWithCapacity(capacity int) *Tracker {
	t := &Tracker{
		snapshots: newRing[models.MetricSnapshot](capacity),
		series:    make(map[string]*ring[models.MetricPoint], len(trackedMetrics)),
		now:       time.Now,
	}
	for _, name := range trackedMetrics {
		t.series[name] = newRing[models.MetricPoint](seriesCapacity)
	}
	return t
}

// AddSnapshot captures per-service metric maps from the graph plus the
// aggregate scalar series. Oldest snapshots are evicted once capacity is
// exceeded.
func (t *Tracker) AddSnapshot(g *topology.Graph, riskScore float64, bottleneckCount int) {
	snap := models.MetricSnapshot{
		Timestamp:       t.now(),
		RiskScore:       riskScore,
		CPUUsage:        make(map[string]float64),
		MemoryUsage:     make(map[string]float64),
		ErrorRates:      make(map[string]float64),
		Latencies:       make(map[string]float64),
		BottleneckCount: bottleneckCount,
	}
	for _, id := range g.NodeIDs() {
		node, _ := g.Node(id)
		snap.CPUUsage[id] = node.CPUUsage
		snap.MemoryUsage[id] = node.MemoryUsage
		snap.ErrorRates[id] = node.ErrorRate
		snap.Latencies[id] = node.Latency
		if node.Status == models.StatusCritical {
			snap.CriticalServices = append(snap.CriticalServices, id)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.snapshots.push(snap)
	t.series[MetricRiskScore].push(models.MetricPoint{Timestamp: snap.Timestamp, Value: riskScore})
	if len(snap.CPUUsage) > 0 {
		t.series[MetricCPUUsage].push(models.MetricPoint{Timestamp: snap.Timestamp, Value: mean(snap.CPUUsage)})
		t.series[MetricMemoryUsage].push(models.MetricPoint{Timestamp: snap.Timestamp, Value: mean(snap.MemoryUsage)})
		t.series[MetricErrorRate].push(models.MetricPoint{Timestamp: snap.Timestamp, Value: mean(snap.ErrorRates)})
		t.series[MetricLatency].push(models.MetricPoint{Timestamp: snap.Timestamp, Value: mean(snap.Latencies)})
	}
}

// RecentSnapshots returns snapshots within the last windowMinutes,
// oldest-first.
func (t *Tracker) RecentSnapshots(windowMinutes int) []models.MetricSnapshot {
	cutoff := t.now().Add(-time.Duration(windowMinutes) * time.Minute)

	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []models.MetricSnapshot
	for _, s := range t.snapshots.items() {
		if !s.Timestamp.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// Export returns the windowed snapshot view for external serialization. It
// never mutates stored data.
func (t *Tracker) Export(windowMinutes int) []models.MetricSnapshot {
	return t.RecentSnapshots(windowMinutes)
}

// ServiceHistory extracts the per-service metric series inside the window.
func (t *Tracker) ServiceHistory(serviceID string, windowMinutes int) models.ServiceHistory {
	hist := models.ServiceHistory{ServiceID: serviceID}
	for _, snap := range t.RecentSnapshots(windowMinutes) {
		if v, ok := snap.CPUUsage[serviceID]; ok {
			hist.CPU = append(hist.CPU, models.MetricPoint{Timestamp: snap.Timestamp, Value: v})
		}
		if v, ok := snap.MemoryUsage[serviceID]; ok {
			hist.Memory = append(hist.Memory, models.MetricPoint{Timestamp: snap.Timestamp, Value: v})
		}
		if v, ok := snap.ErrorRates[serviceID]; ok {
			hist.Errors = append(hist.Errors, models.MetricPoint{Timestamp: snap.Timestamp, Value: v})
		}
		if v, ok := snap.Latencies[serviceID]; ok {
			hist.Latency = append(hist.Latency, models.MetricPoint{Timestamp: snap.Timestamp, Value: v})
		}
	}
	return hist
}

// Statistics summarises stored data coverage.
func (t *Tracker) Statistics() models.TrackerStatistics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := models.TrackerStatistics{
		TotalSnapshots: t.snapshots.len(),
		MetricsTracked: append([]string(nil), trackedMetrics...),
	}
	items := t.snapshots.items()
	if len(items) > 0 {
		stats.OldestSnapshot = items[0].Timestamp
		stats.NewestSnapshot = items[len(items)-1].Timestamp
		stats.CoverageHours = float64(len(items)) / 60.0
	}
	return stats
}

func mean(m map[string]float64) float64 {
	if len(m) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum / float64(len(m))
}
