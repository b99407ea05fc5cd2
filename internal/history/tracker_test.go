package history

import (
	"testing"
	"time"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
	"github.com/scaleguardhq/scaleguard-engine/internal/topology"
)

func testGraph(t *testing.T, cpu float64) *topology.Graph {
	t.Helper()
	g := topology.New()
	nodes := []models.ServiceNode{
		{ID: "svc", Name: "svc", Status: models.StatusHealthy, CPUUsage: cpu, MemoryUsage: 40, ErrorRate: 1, Latency: 50},
		{ID: "db", Name: "db", Type: models.TypeDatabase, Status: models.StatusCritical, CPUUsage: 90, MemoryUsage: 85, ErrorRate: 5, Latency: 20},
	}
	if err := g.Build(nodes, nil); err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func TestTrackerEvictsOldestBeyondCapacity(t *testing.T) {
	tracker := NewTrackerWithCapacity(3)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	tracker.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	for i := 0; i < 5; i++ {
		tracker.AddSnapshot(testGraph(t, float64(10+i)), float64(i), 0)
	}

	tracker.now = func() time.Time { return base.Add(10 * time.Minute) }
	snaps := tracker.RecentSnapshots(60)
	if len(snaps) != 3 {
		t.Fatalf("expected 3 retained snapshots, got %d", len(snaps))
	}
	if snaps[0].RiskScore != 2 || snaps[2].RiskScore != 4 {
		t.Fatalf("expected the 3 most recent snapshots oldest-first, got %v and %v",
			snaps[0].RiskScore, snaps[2].RiskScore)
	}
}

func TestRecentSnapshotsRespectsWindow(t *testing.T) {
	tracker := NewTrackerWithCapacity(10)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tracker.now = func() time.Time { return base }
	tracker.AddSnapshot(testGraph(t, 20), 30, 1)

	tracker.now = func() time.Time { return base.Add(45 * time.Minute) }
	tracker.AddSnapshot(testGraph(t, 25), 35, 1)

	tracker.now = func() time.Time { return base.Add(50 * time.Minute) }
	if got := len(tracker.RecentSnapshots(30)); got != 1 {
		t.Fatalf("expected 1 snapshot in 30m window, got %d", got)
	}
	if got := len(tracker.RecentSnapshots(120)); got != 2 {
		t.Fatalf("expected 2 snapshots in 120m window, got %d", got)
	}
}

func TestSnapshotRecordsCriticalServices(t *testing.T) {
	tracker := NewTrackerWithCapacity(5)
	tracker.AddSnapshot(testGraph(t, 20), 40, 1)

	snaps := tracker.RecentSnapshots(60)
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if len(snaps[0].CriticalServices) != 1 || snaps[0].CriticalServices[0] != "db" {
		t.Fatalf("expected db listed as critical, got %v", snaps[0].CriticalServices)
	}
}

func TestServiceHistoryExtractsSeries(t *testing.T) {
	tracker := NewTrackerWithCapacity(10)
	for i := 0; i < 4; i++ {
		tracker.AddSnapshot(testGraph(t, float64(10+i*5)), 30, 0)
	}

	hist := tracker.ServiceHistory("svc", 60)
	if len(hist.CPU) != 4 {
		t.Fatalf("expected 4 cpu points, got %d", len(hist.CPU))
	}
	if hist.CPU[0].Value != 10 || hist.CPU[3].Value != 25 {
		t.Fatalf("unexpected cpu series: first=%f last=%f", hist.CPU[0].Value, hist.CPU[3].Value)
	}
	if len(tracker.ServiceHistory("ghost", 60).CPU) != 0 {
		t.Fatalf("unknown service should have empty history")
	}
}

func TestMetricTrendDirection(t *testing.T) {
	tracker := NewTrackerWithCapacity(100)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	tracker.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	// Risk score rising steeply: 10, 20, ... 60.
	for i := 0; i < 6; i++ {
		tracker.AddSnapshot(testGraph(t, 20), float64(10+i*10), 0)
	}

	tracker.now = func() time.Time { return base.Add(10 * time.Minute) }
	trend, ok := tracker.MetricTrend(MetricRiskScore, 60)
	if !ok {
		t.Fatalf("expected trend")
	}
	if trend.Direction != models.TrendIncreasing {
		t.Fatalf("expected increasing, got %s", trend.Direction)
	}
	if trend.CurrentValue != 60 {
		t.Fatalf("expected current 60, got %f", trend.CurrentValue)
	}
}

func TestMetricTrendNeedsTwoPoints(t *testing.T) {
	tracker := NewTrackerWithCapacity(10)
	tracker.AddSnapshot(testGraph(t, 20), 30, 0)
	if _, ok := tracker.MetricTrend(MetricRiskScore, 60); ok {
		t.Fatalf("one point should not produce a trend")
	}
	if _, ok := tracker.MetricTrend("unknown_metric", 60); ok {
		t.Fatalf("unknown metric should not produce a trend")
	}
}

func TestStatisticsCoverage(t *testing.T) {
	tracker := NewTrackerWithCapacity(10)
	for i := 0; i < 3; i++ {
		tracker.AddSnapshot(testGraph(t, 20), 30, 0)
	}

	stats := tracker.Statistics()
	if stats.TotalSnapshots != 3 {
		t.Fatalf("expected 3 snapshots, got %d", stats.TotalSnapshots)
	}
	if len(stats.MetricsTracked) != 5 {
		t.Fatalf("expected 5 tracked metrics, got %d", len(stats.MetricsTracked))
	}
}
