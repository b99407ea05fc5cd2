package engine

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/scaleguardhq/scaleguard-engine/internal/analyzer"
	"github.com/scaleguardhq/scaleguard-engine/internal/metrics"
	"github.com/scaleguardhq/scaleguard-engine/internal/models"
	"github.com/scaleguardhq/scaleguard-engine/internal/narrative"
	"github.com/scaleguardhq/scaleguard-engine/internal/predictor"
	"github.com/scaleguardhq/scaleguard-engine/internal/publish"
	"github.com/scaleguardhq/scaleguard-engine/internal/remediation"
	"github.com/scaleguardhq/scaleguard-engine/internal/simulator"
	"github.com/scaleguardhq/scaleguard-engine/internal/topology"
	"github.com/scaleguardhq/scaleguard-engine/internal/utils"
)

// Tracker is the history store behaviour the engine depends on.
type Tracker interface {
	predictor.HistorySource
	AddSnapshot(g *topology.Graph, riskScore float64, bottleneckCount int)
}

// CycleResult is one full pass: simulate, analyze, track, predict, remediate.
type CycleResult struct {
	Analysis    *models.RootCauseAnalysis
	Predictions models.PredictionReport
	Actions     []*models.RemediationAction
	Topology    models.Topology
	Duration    time.Duration
}

// Engine wires the pipeline stages together and runs them as one cycle.
// Narrative enrichment and publishing are best-effort; their failures are
// logged and never fail the cycle.
type Engine struct {
	simulator    *simulator.Simulator
	analyzer     *analyzer.Analyzer
	tracker      Tracker
	predictor    *predictor.Predictor
	remediator   *remediation.Remediator
	narratives   *narrative.Manager
	publisher    publish.Publisher
	growthFactor float64
	latency      *utils.LatencyTracker
	logger       *slog.Logger
}

// New assembles an engine. publisher may be nil; it defaults to the noop
// publisher.
func New(
	sim *simulator.Simulator,
	an *analyzer.Analyzer,
	tracker Tracker,
	pred *predictor.Predictor,
	rem *remediation.Remediator,
	narratives *narrative.Manager,
	publisher publish.Publisher,
	growthFactor float64,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = publish.NoopPublisher{}
	}
	if growthFactor <= 0 {
		growthFactor = 1.0
	}
	return &Engine{
		simulator:    sim,
		analyzer:     an,
		tracker:      tracker,
		predictor:    pred,
		remediator:   rem,
		narratives:   narratives,
		publisher:    publisher,
		growthFactor: growthFactor,
		latency:      utils.NewLatencyTracker(512),
		logger:       logger,
	}
}

// RunCycle executes one full pass over the topology.
func (e *Engine) RunCycle(ctx context.Context) (CycleResult, error) {
	start := time.Now()
	result := CycleResult{}

	if err := ctx.Err(); err != nil {
		metrics.ObserveCycle(time.Since(start), metrics.OutcomeError)
		return result, utils.NewAppError("engine.RunCycle", "cycle aborted", err)
	}

	g := e.simulator.Graph()
	result.Topology = e.simulator.Simulate(e.growthFactor)

	analysis := e.analyzer.PerformAnalysis(g)
	result.Analysis = &analysis

	e.tracker.AddSnapshot(g, analysis.RiskScore, len(analysis.Bottlenecks))
	metrics.SetRiskScore(analysis.RiskScore)
	metrics.SetBottleneckCount(len(analysis.Bottlenecks))

	result.Predictions = e.predictor.AllPredictions(g, e.tracker)

	result.Actions = e.remediate(ctx, g, &analysis)

	e.enrichNarrative(ctx, g, &analysis)
	e.publishOutputs(ctx, result)

	result.Duration = time.Since(start)
	e.latency.Observe(result.Duration)
	metrics.ObserveCycle(result.Duration, metrics.OutcomeSuccess)

	e.logger.Info("cycle complete",
		"risk_score", analysis.RiskScore,
		"bottlenecks", len(analysis.Bottlenecks),
		"predictions", len(result.Predictions.FailurePredictions),
		"actions", len(result.Actions),
		"duration", result.Duration)
	return result, nil
}

// remediate evaluates every node against the rule catalogue and executes the
// auto-approved actions. A failed execution is recorded and does not stop
// the remaining actions.
func (e *Engine) remediate(ctx context.Context, g *topology.Graph, analysis *models.RootCauseAnalysis) []*models.RemediationAction {
	var created []*models.RemediationAction
	autoApprove := make(map[string]bool)
	for _, rule := range e.remediator.Rules() {
		autoApprove[rule.RuleID] = rule.AutoApprove
	}

	for _, id := range g.NodeIDs() {
		node, _ := g.Node(id)
		created = append(created, e.remediator.Evaluate(*node, analysis)...)
	}

	for _, action := range created {
		if !autoApprove[action.RuleID] {
			continue
		}
		if err := e.remediator.Execute(ctx, action); err != nil {
			e.logger.Warn("auto remediation failed",
				"action", action.ActionID,
				"service", action.ServiceID,
				"error", err)
		}
		metrics.ObserveRemediation(string(action.ActionType), string(action.Status))
	}
	return created
}

func (e *Engine) enrichNarrative(ctx context.Context, g *topology.Graph, analysis *models.RootCauseAnalysis) {
	if e.narratives == nil {
		return
	}
	summary := summarize(g)
	analysis.Narrative = e.narratives.Narrative(ctx, analysis, summary)
	analysis.Recommendations = mergeAdvice(analysis.Recommendations, e.narratives.Recommendations(ctx, analysis))
}

// mergeAdvice appends provider recommendations the analyzer did not already
// produce, keeping the analyzer's ordering first.
func mergeAdvice(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, r := range base {
		seen[r] = struct{}{}
	}
	for _, r := range extra {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		base = append(base, r)
	}
	return base
}

func (e *Engine) publishOutputs(ctx context.Context, result CycleResult) {
	if err := e.publisher.PublishAnalysis(ctx, result.Analysis); err != nil {
		e.logger.Warn("publish analysis failed", "error", err)
	}
	if err := e.publisher.PublishPredictions(ctx, result.Predictions); err != nil {
		e.logger.Warn("publish predictions failed", "error", err)
	}
	if err := e.publisher.PublishRemediationStats(ctx, e.remediator.Statistics()); err != nil {
		e.logger.Warn("publish remediation stats failed", "error", err)
	}
}

// CycleLatency reports the given percentile over recent cycle durations.
func (e *Engine) CycleLatency(percentile float64) time.Duration {
	return e.latency.Percentile(percentile)
}

func summarize(g *topology.Graph) models.SystemSummary {
	summary := models.SystemSummary{TotalServices: g.Len()}
	types := make(map[string]struct{})
	for _, id := range g.NodeIDs() {
		node, _ := g.Node(id)
		types[string(node.Type)] = struct{}{}
		if node.Status == models.StatusCritical {
			summary.CriticalCount++
		}
	}
	for t := range types {
		summary.ServiceTypes = append(summary.ServiceTypes, t)
	}
	sort.Strings(summary.ServiceTypes)
	return summary
}
