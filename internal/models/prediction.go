package models

import "time"

// NoImminentFailure is the sentinel estimated-minutes value meaning no
// failure is expected inside the forecast horizon.
const NoImminentFailure = 999

// FailureType categorises the dominant failure mode behind a prediction.
type FailureType string

const (
	FailurePerformanceDegradation FailureType = "performance_degradation"
	FailureCPUExhaustion          FailureType = "cpu_exhaustion"
	FailureMemoryLeak             FailureType = "memory_leak"
	FailureResourceExhaustion     FailureType = "resource_exhaustion"
	FailureErrorCascade           FailureType = "error_cascade"
	FailureLatencySpike           FailureType = "latency_spike"
)

// FailurePrediction estimates whether and when a service will fail.
// Probability is always within [5,95]; predictions that would score below 15
// are suppressed entirely.
type FailurePrediction struct {
	ServiceID           string      `json:"service_id"`
	Probability         float64     `json:"failure_probability"`
	EstimatedMinutes    int         `json:"estimated_time_minutes"`
	FailureType         FailureType `json:"failure_type"`
	ContributingFactors []string    `json:"contributing_factors"`
	PreventiveActions   []string    `json:"preventive_actions"`
	Severity            string      `json:"severity"`
}

// CascadePrediction lists the services directly exposed to a bottleneck.
type CascadePrediction struct {
	OriginService   string   `json:"origin_service"`
	AtRiskServices  []string `json:"at_risk_services"`
	RiskLevel       string   `json:"risk_level"`
	EstimatedImpact string   `json:"estimated_impact"`
	Recommendation  string   `json:"recommendation"`
}

// TrendPrediction extrapolates a single metric series forward.
type TrendPrediction struct {
	PredictionID    string    `json:"prediction_id"`
	TargetService   string    `json:"target_service"`
	MetricName      string    `json:"metric_name"`
	CurrentValue    float64   `json:"current_value"`
	PredictedValue  float64   `json:"predicted_value"`
	PredictedAt     time.Time `json:"predicted_at"`
	Confidence      float64   `json:"confidence"`
	TimeToThreshold int       `json:"time_to_failure"`
	Severity        string    `json:"severity"`
	Recommendation  string    `json:"recommendation"`
}

// PredictionReport aggregates one forecasting pass over the whole topology.
type PredictionReport struct {
	FailurePredictions []FailurePrediction `json:"failure_predictions"`
	CascadePredictions []CascadePrediction `json:"cascade_predictions"`
	GeneratedAt        time.Time           `json:"prediction_timestamp"`
	TotalAtRisk        int                 `json:"total_at_risk_services"`
}
