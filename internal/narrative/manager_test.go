package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

func sampleAnalysis() *models.RootCauseAnalysis {
	return &models.RootCauseAnalysis{
		RiskScore: 75,
		Bottlenecks: []models.BottleneckNode{
			{ID: "orders-db", Name: "Orders DB", Type: models.TypeDatabase, Reason: "critical CPU usage at 95.0%"},
		},
		CascadeChains: []models.CascadeChain{
			{Origin: "orders-db", DescendantCount: 4},
		},
		Recommendations: []string{"Scale Orders DB", "Add circuit breakers"},
	}
}

func TestTemplateProviderNarrative(t *testing.T) {
	p := NewTemplateProvider()
	summary := models.SystemSummary{TotalServices: 10, CriticalCount: 2}

	text, err := p.AnalyzeSystemHealth(context.Background(), sampleAnalysis(), summary)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(text, "75/100") {
		t.Fatalf("narrative should mention the risk score, got %q", text)
	}
	if !strings.Contains(text, "Orders DB") {
		t.Fatalf("narrative should name the primary bottleneck, got %q", text)
	}
	if !strings.Contains(text, "cascading failure") {
		t.Fatalf("narrative should mention cascade exposure, got %q", text)
	}
}

func TestTemplateProviderRecommendationsCapped(t *testing.T) {
	p := NewTemplateProvider()
	analysis := sampleAnalysis()
	for i := 0; i < 10; i++ {
		analysis.Recommendations = append(analysis.Recommendations, "extra")
	}

	recs, err := p.GenerateRecommendations(context.Background(), analysis)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	if len(recs) > 6 {
		t.Fatalf("expected at most 6 recommendations, got %d", len(recs))
	}
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) AnalyzeSystemHealth(context.Context, *models.RootCauseAnalysis, models.SystemSummary) (string, error) {
	return "", errors.New("upstream unavailable")
}
func (failingProvider) GenerateRecommendations(context.Context, *models.RootCauseAnalysis) ([]string, error) {
	return nil, errors.New("upstream unavailable")
}

func TestManagerFallsBackOnFailure(t *testing.T) {
	m := NewManager(nil)
	m.Register(failingProvider{})
	if err := m.Switch("failing"); err != nil {
		t.Fatalf("switch: %v", err)
	}

	text := m.Narrative(context.Background(), sampleAnalysis(), models.SystemSummary{TotalServices: 5})
	if text == "" {
		t.Fatalf("expected fallback narrative")
	}
	recs := m.Recommendations(context.Background(), sampleAnalysis())
	if len(recs) == 0 {
		t.Fatalf("expected fallback recommendations")
	}
}

func TestManagerSwitchUnknownProvider(t *testing.T) {
	m := NewManager(nil)
	if err := m.Switch("ghost"); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	if m.Active() != "template" {
		t.Fatalf("active provider should stay template, got %s", m.Active())
	}
}
