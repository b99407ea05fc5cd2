package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// Manager holds the registered providers and routes narrative requests to
// the active one, falling back to the template provider on failure. The core
// analysis pipeline never depends on a manager call succeeding.
type Manager struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
	fallback  Provider
	logger    *slog.Logger
}

// NewManager starts with the template provider registered and active.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl := NewTemplateProvider()
	return &Manager{
		providers: map[string]Provider{tmpl.Name(): tmpl},
		active:    tmpl.Name(),
		fallback:  tmpl,
		logger:    logger,
	}
}

// Register adds a provider under its own name.
func (m *Manager) Register(p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[p.Name()] = p
}

// Switch selects the active provider by name.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("narrative provider %q not registered", name)
	}
	m.active = name
	return nil
}

// Active reports the current provider name.
func (m *Manager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

func (m *Manager) activeProvider() Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providers[m.active]
}

// Narrative renders the health summary with the active provider, falling
// back to the template provider on error. The returned string may be empty
// only if both fail.
func (m *Manager) Narrative(ctx context.Context, analysis *models.RootCauseAnalysis, summary models.SystemSummary) string {
	p := m.activeProvider()
	text, err := p.AnalyzeSystemHealth(ctx, analysis, summary)
	if err == nil {
		return text
	}
	m.logger.Warn("narrative provider failed, using fallback",
		"provider", p.Name(), "error", err)
	text, err = m.fallback.AnalyzeSystemHealth(ctx, analysis, summary)
	if err != nil {
		return ""
	}
	return text
}

// Recommendations mirrors Narrative for the advice list.
func (m *Manager) Recommendations(ctx context.Context, analysis *models.RootCauseAnalysis) []string {
	p := m.activeProvider()
	recs, err := p.GenerateRecommendations(ctx, analysis)
	if err == nil {
		return recs
	}
	m.logger.Warn("narrative provider failed, using fallback",
		"provider", p.Name(), "error", err)
	recs, err = m.fallback.GenerateRecommendations(ctx, analysis)
	if err != nil {
		return nil
	}
	return recs
}
