package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// maxNarrativeRecommendations caps provider-generated advice.
const maxNarrativeRecommendations = 6

// Provider turns a computed analysis into operator-facing prose. Providers
// must never be load-bearing: callers treat any error as "no narrative".
type Provider interface {
	Name() string
	AnalyzeSystemHealth(ctx context.Context, analysis *models.RootCauseAnalysis, summary models.SystemSummary) (string, error)
	GenerateRecommendations(ctx context.Context, analysis *models.RootCauseAnalysis) ([]string, error)
}

// TemplateProvider renders deterministic narratives from the analysis alone.
// It is the default and the fallback when a remote provider fails.
type TemplateProvider struct{}

// NewTemplateProvider constructs the deterministic provider.
func NewTemplateProvider() *TemplateProvider { return &TemplateProvider{} }

func (p *TemplateProvider) Name() string { return "template" }

// AnalyzeSystemHealth summarises risk posture, bottlenecks, and cascade
// exposure in a few sentences.
func (p *TemplateProvider) AnalyzeSystemHealth(_ context.Context, analysis *models.RootCauseAnalysis, summary models.SystemSummary) (string, error) {
	var b strings.Builder

	switch {
	case analysis.RiskScore > 70:
		fmt.Fprintf(&b, "System health is degraded with a risk score of %.0f/100. Immediate attention required.", analysis.RiskScore)
	case analysis.RiskScore > 40:
		fmt.Fprintf(&b, "System health shows elevated risk at %.0f/100. Several services need attention.", analysis.RiskScore)
	default:
		fmt.Fprintf(&b, "System health is stable with a risk score of %.0f/100.", analysis.RiskScore)
	}

	if summary.CriticalCount > 0 {
		fmt.Fprintf(&b, " %d of %d services are in a critical state.", summary.CriticalCount, summary.TotalServices)
	}
	if len(analysis.Bottlenecks) > 0 {
		top := analysis.Bottlenecks[0]
		fmt.Fprintf(&b, " The primary bottleneck is %s (%s): %s.", top.Name, top.Type, top.Reason)
		if len(analysis.Bottlenecks) > 1 {
			fmt.Fprintf(&b, " %d further bottlenecks were identified.", len(analysis.Bottlenecks)-1)
		}
	}
	if len(analysis.CascadeChains) > 0 {
		fmt.Fprintf(&b, " %d potential cascading failure paths exist; prioritise isolating the origin services.", len(analysis.CascadeChains))
	}
	return b.String(), nil
}

// GenerateRecommendations passes through the analyzer's own advice, capped.
func (p *TemplateProvider) GenerateRecommendations(_ context.Context, analysis *models.RootCauseAnalysis) ([]string, error) {
	recs := analysis.Recommendations
	if len(recs) > maxNarrativeRecommendations {
		recs = recs[:maxNarrativeRecommendations]
	}
	return append([]string(nil), recs...), nil
}
