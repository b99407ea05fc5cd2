package predictor

import (
	"fmt"
	"sort"
	"time"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
	"github.com/scaleguardhq/scaleguard-engine/internal/topology"
)

// HistorySource supplies the tracked history the predictor consumes.
type HistorySource interface {
	ServiceHistory(serviceID string, windowMinutes int) models.ServiceHistory
	AllTrends(windowMinutes int) map[string]models.TrendAnalysis
}

// historyWindowMinutes bounds how far back the predictor reads history.
const historyWindowMinutes = 60

// PredictCascades reports, for each bottleneck origin, the services one hop
// downstream that would absorb its failure.
func (p *Predictor) PredictCascades(g *topology.Graph, bottleneckIDs []string) []models.CascadePrediction {
	var cascades []models.CascadePrediction
	for _, id := range bottleneckIDs {
		node, ok := g.Node(id)
		if !ok {
			continue
		}
		atRisk := g.Successors(id)
		if len(atRisk) == 0 {
			continue
		}
		level := "medium"
		if len(atRisk) > 3 {
			level = "high"
		}
		cascades = append(cascades, models.CascadePrediction{
			OriginService:   id,
			AtRiskServices:  append([]string(nil), atRisk...),
			RiskLevel:       level,
			EstimatedImpact: fmt.Sprintf("%d services at risk", len(atRisk)),
			Recommendation:  fmt.Sprintf("Add circuit breakers between %s and its dependents", node.Name),
		})
	}
	return cascades
}

// AllPredictions runs a full forecasting pass: per-service failure
// predictions ordered by probability, plus cascade exposure for every
// degraded service that has dependents. Cascade origins are seeded from
// status rather than the probability ranking, so a warning node whose
// evidence falls below the reporting floor still surfaces its blast radius.
func (p *Predictor) AllPredictions(g *topology.Graph, source HistorySource) models.PredictionReport {
	trends := source.AllTrends(historyWindowMinutes)

	var failures []models.FailurePrediction
	var origins []string
	for _, id := range g.NodeIDs() {
		node, _ := g.Node(id)
		if node.Status != models.StatusHealthy {
			origins = append(origins, id)
		}
		hist := source.ServiceHistory(id, historyWindowMinutes)
		if pred, ok := p.PredictFailure(*node, trends, hist); ok {
			failures = append(failures, pred)
		}
	}
	sort.SliceStable(failures, func(i, j int) bool {
		return failures[i].Probability > failures[j].Probability
	})

	cascades := p.PredictCascades(g, origins)

	report := models.PredictionReport{
		FailurePredictions: failures,
		CascadePredictions: cascades,
		GeneratedAt:        time.Now(),
		TotalAtRisk:        len(failures),
	}
	p.logger.Debug("prediction pass complete",
		"failures", len(failures),
		"cascades", len(cascades))
	return report
}
