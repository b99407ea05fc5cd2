package analyzer

import (
	"fmt"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
	"github.com/scaleguardhq/scaleguard-engine/internal/topology"
)

const maxRecommendations = 8

// Recommendations drafts template remediation advice keyed by the signal
// combinations observed on the reported bottlenecks, capped at 8 entries.
func (a *Analyzer) Recommendations(bottlenecks []models.BottleneckNode, g *topology.Graph) []string {
	recs := make([]string, 0, maxRecommendations)
	appendRec := func(rec string) {
		for _, existing := range recs {
			if existing == rec {
				return
			}
		}
		if len(recs) < maxRecommendations {
			recs = append(recs, rec)
		}
	}

	for _, b := range bottlenecks {
		hasSignal := func(kind models.SignalKind, minTier int) bool {
			for _, s := range b.Signals {
				if s.Kind == kind && s.Tier >= minTier {
					return true
				}
			}
			return false
		}

		if hasSignal(models.SignalCPU, 2) {
			if b.Type == models.TypeDatabase {
				appendRec(fmt.Sprintf("Scale %s: add read replicas and review slow queries with proper indexing", b.Name))
			} else {
				appendRec(fmt.Sprintf("Scale %s horizontally: add 2-3 instances behind the load balancer", b.Name))
			}
		}
		if hasSignal(models.SignalMemory, 1) {
			appendRec(fmt.Sprintf("Review %s memory usage: check for leaks and tune allocation", b.Name))
		}
		if hasSignal(models.SignalCentrality, 1) {
			appendRec(fmt.Sprintf("Reduce dependency on %s: add circuit breakers and fallbacks for its dependents", b.Name))
		}
		if hasSignal(models.SignalConnectionPool, 1) {
			appendRec(fmt.Sprintf("Raise %s connection pool limits or add pooling middleware", b.Name))
		}
		if hasSignal(models.SignalErrorRate, 1) {
			appendRec(fmt.Sprintf("Investigate %s errors: enable debug logs and trace recent error patterns", b.Name))
		}
	}

	if len(bottlenecks) > 3 {
		appendRec("Multiple concurrent bottlenecks: review capacity planning and enable auto-scaling policies")
	}
	return recs
}
