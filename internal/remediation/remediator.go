package remediation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// Remediator evaluates the rule catalogue against observed service state and
// executes the resulting actions. All mutating entry points are safe for
// concurrent use.
type Remediator struct {
	mu      sync.Mutex
	rules   map[string]*models.RemediationRule
	order   []string
	history []*models.RemediationAction
	enabled bool
	dryRun  bool

	workDelay time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Remediator.
type Option func(*Remediator)

// WithDryRun makes Execute describe actions without simulating work.
func WithDryRun(dryRun bool) Option {
	return func(r *Remediator) { r.dryRun = dryRun }
}

// WithExecutionDelay sets the simulated per-action work duration.
func WithExecutionDelay(d time.Duration) Option {
	return func(r *Remediator) { r.workDelay = d }
}

// New builds a Remediator with the built-in rule catalogue.
func New(logger *slog.Logger, opts ...Option) *Remediator {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Remediator{
		rules:     make(map[string]*models.RemediationRule),
		enabled:   true,
		workDelay: 2 * time.Second,
		now:       time.Now,
		logger:    logger,
	}
	for _, rule := range defaultRules() {
		r.rules[rule.RuleID] = rule
		r.order = append(r.order, rule.RuleID)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Evaluate matches every enabled, off-cooldown rule against one service and
// returns the created PENDING actions. Matching rules have LastTriggered
// stamped immediately, so re-evaluating the same state inside the cooldown
// window creates nothing.
func (r *Remediator) Evaluate(node models.ServiceNode, analysis *models.RootCauseAnalysis) []*models.RemediationAction {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled {
		return nil
	}

	var created []*models.RemediationAction
	now := r.now()
	for _, id := range r.order {
		rule := r.rules[id]
		if !rule.Enabled {
			continue
		}
		if !r.cooldownElapsed(rule, now) {
			continue
		}
		matched, reason := matchRule(rule, node, analysis)
		if !matched {
			continue
		}

		rule.LastTriggered = now
		action := &models.RemediationAction{
			ActionID:    uuid.NewString(),
			RuleID:      rule.RuleID,
			ServiceID:   node.ID,
			ActionType:  rule.ActionType,
			Reason:      reason,
			TriggeredBy: rule.Name,
			Status:      models.ActionPending,
			CreatedAt:   now,
			Parameters:  cloneParams(rule.Parameters),
		}
		r.history = append(r.history, action)
		created = append(created, action)
		r.logger.Info("remediation triggered",
			"rule", rule.RuleID,
			"service", node.ID,
			"action", string(rule.ActionType))
	}
	return created
}

// cooldownElapsed gates a rule on the later of its last trigger and last
// successful execution.
func (r *Remediator) cooldownElapsed(rule *models.RemediationRule, now time.Time) bool {
	last := rule.LastTriggered
	if rule.LastExecuted.After(last) {
		last = rule.LastExecuted
	}
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= rule.Cooldown
}

// matchRule checks one rule's trigger condition against the service state.
func matchRule(rule *models.RemediationRule, node models.ServiceNode, analysis *models.RootCauseAnalysis) (bool, string) {
	degraded := node.Status != models.StatusHealthy
	switch rule.RuleID {
	case "cpu_scale":
		if node.CPUUsage > 85 && degraded {
			return true, fmt.Sprintf("CPU at %.1f%% on degraded service %s", node.CPUUsage, node.Name)
		}
	case "memory_restart":
		if node.MemoryUsage > 95 {
			return true, fmt.Sprintf("Memory at %.1f%% on %s", node.MemoryUsage, node.Name)
		}
	case "error_circuit_breaker":
		if node.ErrorRate > 15 {
			return true, fmt.Sprintf("Error rate at %.1f%% on %s", node.ErrorRate, node.Name)
		}
	case "overload_rate_limit":
		// Rate limiting is disruptive, so beyond the node-local condition the
		// analyzer must have singled the service out as a bottleneck.
		if node.Status == models.StatusCritical && node.CPUUsage > 90 && flaggedBottleneck(analysis, node.ID) {
			return true, fmt.Sprintf("Critical overload on %s (CPU %.1f%%)", node.Name, node.CPUUsage)
		}
	case "cache_clear":
		if node.Type == models.TypeCache && node.Latency > 1000 {
			return true, fmt.Sprintf("Cache latency at %.0fms on %s", node.Latency, node.Name)
		}
	default:
		// Rules from a pack reuse the built-in condition vocabulary via
		// their action type.
		return matchByActionType(rule, node)
	}
	return false, ""
}

// flaggedBottleneck reports whether the analyzer singled the service out.
// Without an analysis the node-local condition stands alone.
func flaggedBottleneck(analysis *models.RootCauseAnalysis, serviceID string) bool {
	if analysis == nil {
		return true
	}
	for _, b := range analysis.Bottlenecks {
		if b.ID == serviceID {
			return true
		}
	}
	return false
}

// matchByActionType gives pack-loaded rules sane trigger semantics keyed by
// the effect they request.
func matchByActionType(rule *models.RemediationRule, node models.ServiceNode) (bool, string) {
	switch rule.ActionType {
	case models.ActionScaleHorizontal, models.ActionScaleVertical:
		if node.CPUUsage > 85 && node.Status != models.StatusHealthy {
			return true, fmt.Sprintf("CPU at %.1f%% on degraded service %s", node.CPUUsage, node.Name)
		}
	case models.ActionRestartService:
		if node.MemoryUsage > 95 {
			return true, fmt.Sprintf("Memory at %.1f%% on %s", node.MemoryUsage, node.Name)
		}
	case models.ActionCircuitBreaker:
		if node.ErrorRate > 15 {
			return true, fmt.Sprintf("Error rate at %.1f%% on %s", node.ErrorRate, node.Name)
		}
	case models.ActionRateLimit:
		if node.Status == models.StatusCritical {
			return true, fmt.Sprintf("Critical state on %s", node.Name)
		}
	case models.ActionCacheClear:
		if node.Type == models.TypeCache && node.Latency > 1000 {
			return true, fmt.Sprintf("Cache latency at %.0fms on %s", node.Latency, node.Name)
		}
	case models.ActionTrafficRedirect, models.ActionRollbackDeployment:
		if node.Status == models.StatusCritical {
			return true, fmt.Sprintf("Critical state on %s", node.Name)
		}
	}
	return false, ""
}

// Execute runs one PENDING action to completion. The action always ends in
// COMPLETED or FAILED, never stuck IN_PROGRESS, even when ctx is cancelled
// mid-work. Successful execution stamps the owning rule's LastExecuted.
func (r *Remediator) Execute(ctx context.Context, action *models.RemediationAction) error {
	r.mu.Lock()
	if action.Status != models.ActionPending {
		r.mu.Unlock()
		return fmt.Errorf("action %s is %s, not pending", action.ActionID, action.Status)
	}
	action.Status = models.ActionInProgress
	action.StartedAt = r.now()
	dryRun := r.dryRun
	delay := r.workDelay
	r.mu.Unlock()

	var err error
	if !dryRun {
		err = r.simulateWork(ctx, delay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	action.CompletedAt = r.now()
	if err != nil {
		action.Status = models.ActionFailed
		action.Error = err.Error()
		r.logger.Warn("remediation failed",
			"action", action.ActionID,
			"service", action.ServiceID,
			"error", err)
		return err
	}
	action.Status = models.ActionCompleted
	action.Result = describeEffect(action, dryRun)
	if rule, ok := r.rules[action.RuleID]; ok {
		rule.LastExecuted = action.CompletedAt
	}
	r.logger.Info("remediation completed",
		"action", action.ActionID,
		"service", action.ServiceID,
		"result", action.Result)
	return nil
}

func (r *Remediator) simulateWork(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// describeEffect renders the simulated outcome of a completed action.
func describeEffect(action *models.RemediationAction, dryRun bool) string {
	var effect string
	switch action.ActionType {
	case models.ActionScaleHorizontal:
		effect = fmt.Sprintf("Scaled %s horizontally (factor %v, max %v instances)",
			action.ServiceID, action.Parameters["scale_factor"], action.Parameters["max_instances"])
	case models.ActionScaleVertical:
		effect = fmt.Sprintf("Scaled %s vertically", action.ServiceID)
	case models.ActionRestartService:
		effect = fmt.Sprintf("Restarted %s with %vs grace period",
			action.ServiceID, action.Parameters["grace_period_seconds"])
	case models.ActionCircuitBreaker:
		effect = fmt.Sprintf("Enabled circuit breaker on %s (threshold %v, timeout %vs)",
			action.ServiceID, action.Parameters["failure_threshold"], action.Parameters["timeout_seconds"])
	case models.ActionRateLimit:
		effect = fmt.Sprintf("Applied rate limit of %v req/s to %s",
			action.Parameters["max_requests_per_second"], action.ServiceID)
	case models.ActionCacheClear:
		effect = fmt.Sprintf("Cleared cache on %s", action.ServiceID)
	case models.ActionTrafficRedirect:
		effect = fmt.Sprintf("Redirected traffic away from %s", action.ServiceID)
	case models.ActionRollbackDeployment:
		effect = fmt.Sprintf("Rolled back last deployment of %s", action.ServiceID)
	default:
		effect = fmt.Sprintf("Executed %s on %s", action.ActionType, action.ServiceID)
	}
	if dryRun {
		return "[dry-run] " + effect
	}
	return effect
}

// Rollback cancels a PENDING action. Actions in any other state cannot be
// rolled back.
func (r *Remediator) Rollback(actionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.history {
		if a.ActionID != actionID {
			continue
		}
		if a.Status != models.ActionPending {
			return fmt.Errorf("action %s is %s and cannot be rolled back", actionID, a.Status)
		}
		a.Status = models.ActionRolledBack
		a.CompletedAt = r.now()
		r.logger.Info("remediation rolled back", "action", actionID)
		return nil
	}
	return fmt.Errorf("action %s not found", actionID)
}

// PendingActions returns actions awaiting execution or approval.
func (r *Remediator) PendingActions() []*models.RemediationAction {
	return r.filterActions(func(a *models.RemediationAction) bool {
		return a.Status == models.ActionPending
	})
}

// ActiveActions returns actions currently executing.
func (r *Remediator) ActiveActions() []*models.RemediationAction {
	return r.filterActions(func(a *models.RemediationAction) bool {
		return a.Status == models.ActionInProgress
	})
}

// History returns all actions created within the last window.
func (r *Remediator) History(window time.Duration) []*models.RemediationAction {
	cutoff := r.now().Add(-window)
	return r.filterActions(func(a *models.RemediationAction) bool {
		return !a.CreatedAt.Before(cutoff)
	})
}

func (r *Remediator) filterActions(keep func(*models.RemediationAction) bool) []*models.RemediationAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.RemediationAction
	for _, a := range r.history {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// Statistics aggregates the action history.
func (r *Remediator) Statistics() models.RemediationStatistics {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := models.RemediationStatistics{
		TotalActions:  len(r.history),
		ActionsByType: make(map[models.ActionType]int),
		Enabled:       r.enabled,
		DryRun:        r.dryRun,
	}
	for _, a := range r.history {
		stats.ActionsByType[a.ActionType]++
		switch a.Status {
		case models.ActionCompleted:
			stats.Completed++
		case models.ActionFailed:
			stats.Failed++
		case models.ActionPending:
			stats.Pending++
		}
	}
	if finished := stats.Completed + stats.Failed; finished > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(finished) * 100
	}
	for _, rule := range r.rules {
		if rule.Enabled {
			stats.ActiveRules++
		}
	}
	return stats
}

// Rules returns the catalogue in registration order.
func (r *Remediator) Rules() []models.RemediationRule {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.RemediationRule, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.rules[id])
	}
	return out
}

// SetRuleEnabled toggles one rule.
func (r *Remediator) SetRuleEnabled(ruleID string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[ruleID]
	if !ok {
		return fmt.Errorf("rule %s not found", ruleID)
	}
	rule.Enabled = enabled
	return nil
}

// SetDryRun toggles dry-run mode for subsequent executions.
func (r *Remediator) SetDryRun(dryRun bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dryRun = dryRun
}

// SetEnabled toggles the whole engine; a disabled engine evaluates nothing.
func (r *Remediator) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

func cloneParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
