package models

import "time"

// ActionStatus is a remediation action's state-machine position. Transitions
// are monotonic: PENDING -> IN_PROGRESS -> {COMPLETED, FAILED}. ROLLED_BACK
// terminates a PENDING action only through explicit external intervention.
type ActionStatus string

const (
	ActionPending    ActionStatus = "pending"
	ActionInProgress ActionStatus = "in_progress"
	ActionCompleted  ActionStatus = "completed"
	ActionFailed     ActionStatus = "failed"
	ActionRolledBack ActionStatus = "rolled_back"
)

// ActionType enumerates the remediation effects the engine can simulate.
type ActionType string

const (
	ActionScaleHorizontal    ActionType = "scale_horizontal"
	ActionScaleVertical      ActionType = "scale_vertical"
	ActionRestartService     ActionType = "restart_service"
	ActionCircuitBreaker     ActionType = "circuit_breaker"
	ActionRateLimit          ActionType = "rate_limit"
	ActionCacheClear         ActionType = "cache_clear"
	ActionTrafficRedirect    ActionType = "traffic_redirect"
	ActionRollbackDeployment ActionType = "rollback_deployment"
)

// RemediationRule is one independently configurable trigger in the catalogue.
// Cooldown state is keyed by rule id and updated only on successful
// execution of an action the rule created.
type RemediationRule struct {
	RuleID        string         `json:"rule_id" yaml:"rule_id"`
	Name          string         `json:"name" yaml:"name"`
	Condition     string         `json:"condition" yaml:"condition"`
	ActionType    ActionType     `json:"action_type" yaml:"action_type"`
	Enabled       bool           `json:"enabled" yaml:"enabled"`
	AutoApprove   bool           `json:"auto_approve" yaml:"auto_approve"`
	Cooldown      time.Duration  `json:"cooldown" yaml:"cooldown"`
	Parameters    map[string]any `json:"parameters" yaml:"parameters"`
	LastTriggered time.Time      `json:"last_triggered,omitempty" yaml:"-"`
	LastExecuted  time.Time      `json:"last_executed,omitempty" yaml:"-"`
}

// RemediationAction records one proposed or executed remediation. All
// actions, regardless of outcome, live in the remediator's append-only
// history.
type RemediationAction struct {
	ActionID    string         `json:"action_id"`
	RuleID      string         `json:"rule_id"`
	ServiceID   string         `json:"service_id"`
	ActionType  ActionType     `json:"action_type"`
	Reason      string         `json:"reason"`
	TriggeredBy string         `json:"triggered_by"`
	Status      ActionStatus   `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   time.Time      `json:"started_at,omitempty"`
	CompletedAt time.Time      `json:"completed_at,omitempty"`
	Parameters  map[string]any `json:"parameters"`
	Result      string         `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// RemediationStatistics aggregates the action history.
type RemediationStatistics struct {
	TotalActions  int                `json:"total_actions"`
	Completed     int                `json:"completed"`
	Failed        int                `json:"failed"`
	Pending       int                `json:"pending"`
	SuccessRate   float64            `json:"success_rate"`
	ActionsByType map[ActionType]int `json:"actions_by_type"`
	Enabled       bool               `json:"enabled"`
	DryRun        bool               `json:"dry_run_mode"`
	ActiveRules   int                `json:"active_rules"`
}
