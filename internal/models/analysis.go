package models

// SignalKind names a metric family contributing to a bottleneck score.
type SignalKind string

const (
	SignalCPU            SignalKind = "cpu"
	SignalMemory         SignalKind = "memory"
	SignalCentrality     SignalKind = "centrality"
	SignalConnectionPool SignalKind = "connection_pool"
	SignalErrorRate      SignalKind = "error_rate"
	SignalLatency        SignalKind = "latency"
)

// SignalObservation is one structured contribution to a node's risk score.
// Reason text is rendered from these at the presentation boundary only.
type SignalObservation struct {
	Kind  SignalKind `json:"kind"`
	Tier  int        `json:"tier"`
	Value float64    `json:"value"`
}

// BottleneckNode is a derived view of a degraded node. Recomputed on each
// analysis pass, never mutated in place.
type BottleneckNode struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Type        ServiceType         `json:"type"`
	RiskScore   float64             `json:"risk_score"`
	Centrality  float64             `json:"centrality"`
	CPUUsage    float64             `json:"cpu_usage"`
	MemoryUsage float64             `json:"memory_usage"`
	Signals     []SignalObservation `json:"signals"`
	Reason      string              `json:"reason"`
}

// CascadeChain describes failure propagation rooted at a high-centrality
// critical node.
type CascadeChain struct {
	Origin          string   `json:"origin"`
	DescendantCount int      `json:"descendant_count"`
	Services        []string `json:"services"`
	Description     string   `json:"description"`
}

// RootCauseAnalysis is the composed output of one analysis pass. Narrative is
// filled only by the external text-generation collaborator; when that
// collaborator is unavailable the core-computed fields remain canonical.
type RootCauseAnalysis struct {
	Bottlenecks     []BottleneckNode `json:"primary_bottlenecks"`
	CascadeChains   []CascadeChain   `json:"cascading_failures"`
	Recommendations []string         `json:"recommended_actions"`
	RiskScore       float64          `json:"risk_score"`
	Narrative       string           `json:"narrative,omitempty"`
}

// SystemSummary is the compact system description handed to the narrative
// collaborator alongside the analysis.
type SystemSummary struct {
	TotalServices int      `json:"total_services"`
	CriticalCount int      `json:"critical_count"`
	ServiceTypes  []string `json:"service_types"`
}
