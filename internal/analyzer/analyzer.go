package analyzer

import (
	"log/slog"
	"sort"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
	"github.com/scaleguardhq/scaleguard-engine/internal/topology"
)

// bottleneckThreshold is the minimum accumulated signal score for a node to
// be reported as a bottleneck.
const bottleneckThreshold = 15

// Analyzer derives the risk and bottleneck assessment from a simulated
// topology. It holds no state between passes: PerformAnalysis is a pure
// function of the graph it is given.
type Analyzer struct {
	logger *slog.Logger
}

// New constructs an Analyzer.
func New(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// RiskScore computes the aggregate system risk in [0,100]. Critical nodes
// are weighted by what they are: high-centrality nodes score heaviest, then
// databases, then external dependencies. A graph that has edges but is not
// strongly connected carries an extra structural penalty.
func (a *Analyzer) RiskScore(g *topology.Graph) float64 {
	score := 10.0
	for _, id := range g.NodeIDs() {
		node, _ := g.Node(id)
		switch node.Status {
		case models.StatusCritical:
			switch {
			case node.CentralityScore > 0.2:
				score += 25
			case node.Type == models.TypeDatabase:
				score += 20
			case node.Type == models.TypeExternal:
				score += 15
			default:
				score += 10
			}
		case models.StatusWarning:
			score += 3
		}
	}
	if g.EdgeCount() > 0 && !g.StronglyConnected() {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

// FindBottlenecks scores every non-healthy node from independent tiered
// signal bands and returns those exceeding the actionable threshold, sorted
// by descending score. Ties keep graph iteration order.
func (a *Analyzer) FindBottlenecks(g *topology.Graph) []models.BottleneckNode {
	var out []models.BottleneckNode
	for _, id := range g.NodeIDs() {
		node, _ := g.Node(id)
		if node.Status == models.StatusHealthy {
			continue
		}

		score, signals := scoreSignals(node)
		if score <= bottleneckThreshold {
			continue
		}

		out = append(out, models.BottleneckNode{
			ID:          node.ID,
			Name:        node.Name,
			Type:        node.Type,
			RiskScore:   clampScore(score),
			Centrality:  node.CentralityScore,
			CPUUsage:    node.CPUUsage,
			MemoryUsage: node.MemoryUsage,
			Signals:     signals,
			Reason:      RenderReason(signals),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RiskScore > out[j].RiskScore
	})
	return out
}

// scoreSignals accumulates the tiered band contributions for one node.
func scoreSignals(n *models.ServiceNode) (float64, []models.SignalObservation) {
	var score float64
	var signals []models.SignalObservation

	add := func(kind models.SignalKind, tier int, value, weight float64) {
		score += weight
		signals = append(signals, models.SignalObservation{Kind: kind, Tier: tier, Value: value})
	}

	switch {
	case n.CPUUsage > 90:
		add(models.SignalCPU, 3, n.CPUUsage, 30)
	case n.CPUUsage > 75:
		add(models.SignalCPU, 2, n.CPUUsage, 20)
	case n.CPUUsage > 60:
		add(models.SignalCPU, 1, n.CPUUsage, 10)
	}

	switch {
	case n.MemoryUsage > 90:
		add(models.SignalMemory, 2, n.MemoryUsage, 25)
	case n.MemoryUsage > 75:
		add(models.SignalMemory, 1, n.MemoryUsage, 15)
	}

	switch {
	case n.CentralityScore > 0.3:
		add(models.SignalCentrality, 2, n.CentralityScore, 20)
	case n.CentralityScore > 0.15:
		add(models.SignalCentrality, 1, n.CentralityScore, 10)
	}

	switch {
	case n.ConnectionPoolUsage > 85:
		add(models.SignalConnectionPool, 2, n.ConnectionPoolUsage, 20)
	case n.ConnectionPoolUsage > 70:
		add(models.SignalConnectionPool, 1, n.ConnectionPoolUsage, 10)
	}

	switch {
	case n.ErrorRate > 5:
		add(models.SignalErrorRate, 2, n.ErrorRate, 20)
	case n.ErrorRate > 2:
		add(models.SignalErrorRate, 1, n.ErrorRate, 10)
	}

	return score, signals
}

// CascadingFailures inspects the top bottlenecks with meaningful centrality
// and reports descendant chains large enough to matter.
func (a *Analyzer) CascadingFailures(g *topology.Graph, bottlenecks []models.BottleneckNode) []models.CascadeChain {
	var chains []models.CascadeChain
	inspected := 0
	for _, b := range bottlenecks {
		if inspected >= 3 {
			break
		}
		if b.Centrality <= 0.2 {
			continue
		}
		inspected++

		descendants := g.Descendants(b.ID)
		if len(descendants) <= 2 {
			continue
		}
		chains = append(chains, models.CascadeChain{
			Origin:          b.ID,
			DescendantCount: len(descendants),
			Services:        descendants,
			Description:     describeChain(b.Name, descendants),
		})
	}
	return chains
}

// PerformAnalysis composes a full RootCauseAnalysis from the current graph
// state. The narrative field is left empty for the external text-generation
// collaborator.
func (a *Analyzer) PerformAnalysis(g *topology.Graph) models.RootCauseAnalysis {
	bottlenecks := a.FindBottlenecks(g)
	analysis := models.RootCauseAnalysis{
		Bottlenecks:     bottlenecks,
		CascadeChains:   a.CascadingFailures(g, bottlenecks),
		Recommendations: a.Recommendations(bottlenecks, g),
		RiskScore:       a.RiskScore(g),
	}
	a.logger.Debug("analysis pass complete",
		slog.Float64("risk_score", analysis.RiskScore),
		slog.Int("bottlenecks", len(bottlenecks)),
		slog.Int("cascade_chains", len(analysis.CascadeChains)))
	return analysis
}

func clampScore(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}
