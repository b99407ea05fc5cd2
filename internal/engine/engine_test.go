package engine

import (
	"context"
	"testing"

	"github.com/scaleguardhq/scaleguard-engine/internal/analyzer"
	"github.com/scaleguardhq/scaleguard-engine/internal/history"
	"github.com/scaleguardhq/scaleguard-engine/internal/models"
	"github.com/scaleguardhq/scaleguard-engine/internal/narrative"
	"github.com/scaleguardhq/scaleguard-engine/internal/predictor"
	"github.com/scaleguardhq/scaleguard-engine/internal/remediation"
	"github.com/scaleguardhq/scaleguard-engine/internal/simulator"
)

type recordingPublisher struct {
	analyses    int
	predictions int
	stats       int
}

func (r *recordingPublisher) PublishAnalysis(_ context.Context, _ *models.RootCauseAnalysis) error {
	r.analyses++
	return nil
}

func (r *recordingPublisher) PublishPredictions(_ context.Context, _ models.PredictionReport) error {
	r.predictions++
	return nil
}

func (r *recordingPublisher) PublishRemediationStats(_ context.Context, _ models.RemediationStatistics) error {
	r.stats++
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func testEngine(t *testing.T, publisher *recordingPublisher) (*Engine, *history.Tracker) {
	t.Helper()
	return testEngineWithNarratives(t, publisher, narrative.NewManager(nil))
}

func testEngineWithNarratives(t *testing.T, publisher *recordingPublisher, narratives *narrative.Manager) (*Engine, *history.Tracker) {
	t.Helper()

	sim := simulator.New(nil)
	nodes := []models.ServiceNode{
		{ID: "web", Name: "Web", Type: models.TypeService, Status: models.StatusHealthy, RequestsPerMinute: 500},
		{ID: "svc", Name: "Svc", Type: models.TypeService, Status: models.StatusHealthy, RequestsPerMinute: 800},
		{ID: "db", Name: "DB", Type: models.TypeDatabase, Status: models.StatusHealthy, RequestsPerMinute: 5000},
	}
	edges := []models.DependencyEdge{
		{Source: "web", Target: "svc"},
		{Source: "svc", Target: "db"},
	}
	if err := sim.Build(nodes, edges); err != nil {
		t.Fatalf("build: %v", err)
	}

	tracker := history.NewTrackerWithCapacity(10)
	remediator := remediation.New(nil, remediation.WithDryRun(true), remediation.WithExecutionDelay(0))

	eng := New(
		sim,
		analyzer.New(nil),
		tracker,
		predictor.New(nil),
		remediator,
		narratives,
		publisher,
		1.0,
		nil,
	)
	return eng, tracker
}

func TestRunCycleProducesAnalysis(t *testing.T) {
	publisher := &recordingPublisher{}
	eng, tracker := testEngine(t, publisher)

	result, err := eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}

	if result.Analysis == nil {
		t.Fatalf("expected analysis")
	}
	if result.Analysis.RiskScore < 0 || result.Analysis.RiskScore > 100 {
		t.Fatalf("risk score out of range: %f", result.Analysis.RiskScore)
	}
	if result.Analysis.Narrative == "" {
		t.Fatalf("expected narrative enrichment")
	}
	if len(result.Topology.Nodes) != 3 {
		t.Fatalf("expected 3 nodes in topology, got %d", len(result.Topology.Nodes))
	}
	if result.Duration <= 0 {
		t.Fatalf("expected positive duration")
	}

	if len(tracker.RecentSnapshots(60)) != 1 {
		t.Fatalf("expected 1 snapshot recorded")
	}
	if publisher.analyses != 1 || publisher.predictions != 1 || publisher.stats != 1 {
		t.Fatalf("expected all outputs published once, got %+v", publisher)
	}
}

func TestRunCycleOverloadedDatabaseTriggersRemediation(t *testing.T) {
	publisher := &recordingPublisher{}
	eng, _ := testEngine(t, publisher)

	result, err := eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}

	// The 5000 rpm database saturates, so the analysis reports it and the
	// cpu rules fire.
	if len(result.Analysis.Bottlenecks) == 0 {
		t.Fatalf("expected bottlenecks from the overloaded database")
	}
	if len(result.Actions) == 0 {
		t.Fatalf("expected remediation actions")
	}
	for _, a := range result.Actions {
		if a.Status == models.ActionInProgress {
			t.Fatalf("action %s left in progress", a.ActionID)
		}
	}
}

type advisingProvider struct{}

func (advisingProvider) Name() string { return "advisor" }

func (advisingProvider) AnalyzeSystemHealth(context.Context, *models.RootCauseAnalysis, models.SystemSummary) (string, error) {
	return "system steady", nil
}

func (advisingProvider) GenerateRecommendations(context.Context, *models.RootCauseAnalysis) ([]string, error) {
	return []string{"Pin connection pool sizes before the next traffic ramp"}, nil
}

func TestRunCycleMergesProviderRecommendations(t *testing.T) {
	publisher := &recordingPublisher{}
	narratives := narrative.NewManager(nil)
	narratives.Register(advisingProvider{})
	if err := narratives.Switch("advisor"); err != nil {
		t.Fatalf("switch provider: %v", err)
	}
	eng, _ := testEngineWithNarratives(t, publisher, narratives)

	result, err := eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if result.Analysis.Narrative != "system steady" {
		t.Fatalf("expected provider narrative, got %q", result.Analysis.Narrative)
	}
	var advised bool
	for _, r := range result.Analysis.Recommendations {
		if r == "Pin connection pool sizes before the next traffic ramp" {
			advised = true
		}
	}
	if !advised {
		t.Fatalf("provider advice missing from recommendations: %v", result.Analysis.Recommendations)
	}
}

func TestRunCycleCancelledContext(t *testing.T) {
	publisher := &recordingPublisher{}
	eng, _ := testEngine(t, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.RunCycle(ctx); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestRunCycleAccumulatesHistory(t *testing.T) {
	publisher := &recordingPublisher{}
	eng, tracker := testEngine(t, publisher)

	for i := 0; i < 3; i++ {
		if _, err := eng.RunCycle(context.Background()); err != nil {
			t.Fatalf("run cycle %d: %v", i, err)
		}
	}
	if got := len(tracker.RecentSnapshots(60)); got != 3 {
		t.Fatalf("expected 3 snapshots, got %d", got)
	}
	if eng.CycleLatency(95) <= 0 {
		t.Fatalf("expected recorded cycle latency")
	}
}
