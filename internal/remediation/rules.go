package remediation

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// defaultRules is the built-in rule catalogue. A YAML rule pack can replace
// or extend it via LoadRulesFile.
func defaultRules() []*models.RemediationRule {
	return []*models.RemediationRule{
		{
			RuleID:      "cpu_scale",
			Name:        "Auto-scale on high CPU",
			Condition:   "cpu_usage > 85 and status degraded",
			ActionType:  models.ActionScaleHorizontal,
			Enabled:     true,
			AutoApprove: true,
			Cooldown:    10 * time.Minute,
			Parameters:  map[string]any{"scale_factor": 2, "max_instances": 10},
		},
		{
			RuleID:      "memory_restart",
			Name:        "Restart on memory exhaustion",
			Condition:   "memory_usage > 95",
			ActionType:  models.ActionRestartService,
			Enabled:     true,
			AutoApprove: false,
			Cooldown:    30 * time.Minute,
			Parameters:  map[string]any{"grace_period_seconds": 30},
		},
		{
			RuleID:      "error_circuit_breaker",
			Name:        "Circuit breaker on error spike",
			Condition:   "error_rate > 15",
			ActionType:  models.ActionCircuitBreaker,
			Enabled:     true,
			AutoApprove: true,
			Cooldown:    15 * time.Minute,
			Parameters:  map[string]any{"failure_threshold": 10, "timeout_seconds": 60},
		},
		{
			RuleID:      "overload_rate_limit",
			Name:        "Rate limit on critical overload",
			Condition:   "status critical and cpu_usage > 90",
			ActionType:  models.ActionRateLimit,
			Enabled:     true,
			AutoApprove: true,
			Cooldown:    20 * time.Minute,
			Parameters:  map[string]any{"max_requests_per_second": 100},
		},
		{
			RuleID:      "cache_clear",
			Name:        "Clear cache on high latency",
			Condition:   "type cache and latency > 1000",
			ActionType:  models.ActionCacheClear,
			Enabled:     true,
			AutoApprove: true,
			Cooldown:    30 * time.Minute,
			Parameters:  map[string]any{},
		},
	}
}

// rulePackFile is the on-disk rule pack shape.
type rulePackFile struct {
	Replace bool           `yaml:"replace"`
	Rules   []rulePackRule `yaml:"rules"`
}

type rulePackRule struct {
	RuleID      string            `yaml:"rule_id"`
	Name        string            `yaml:"name"`
	Condition   string            `yaml:"condition"`
	ActionType  models.ActionType `yaml:"action_type"`
	Enabled     *bool             `yaml:"enabled"`
	AutoApprove bool              `yaml:"auto_approve"`
	Cooldown    duration          `yaml:"cooldown"`
	Parameters  map[string]any    `yaml:"parameters"`
}

// duration accepts "10m" style strings in YAML rule packs.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid cooldown %q: %w", value.Value, err)
	}
	*d = duration(parsed)
	return nil
}

// LoadRulesFile merges a YAML rule pack into the remediator. Rules with a
// known rule_id override the existing rule; unknown ids append. With
// replace: true the built-in catalogue is discarded first.
func (r *Remediator) LoadRulesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rule pack: %w", err)
	}
	var pack rulePackFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("parsing rule pack %s: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if pack.Replace {
		r.rules = make(map[string]*models.RemediationRule)
		r.order = nil
	}
	for _, pr := range pack.Rules {
		if pr.RuleID == "" {
			return fmt.Errorf("rule pack %s: rule with empty rule_id", path)
		}
		enabled := true
		if pr.Enabled != nil {
			enabled = *pr.Enabled
		}
		rule := &models.RemediationRule{
			RuleID:      pr.RuleID,
			Name:        pr.Name,
			Condition:   pr.Condition,
			ActionType:  pr.ActionType,
			Enabled:     enabled,
			AutoApprove: pr.AutoApprove,
			Cooldown:    time.Duration(pr.Cooldown),
			Parameters:  pr.Parameters,
		}
		if rule.Parameters == nil {
			rule.Parameters = map[string]any{}
		}
		if _, exists := r.rules[rule.RuleID]; !exists {
			r.order = append(r.order, rule.RuleID)
		}
		r.rules[rule.RuleID] = rule
	}
	r.logger.Info("rule pack loaded", "path", path, "rules", len(r.rules))
	return nil
}
