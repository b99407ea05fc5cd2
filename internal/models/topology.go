package models

// ServiceType enumerates the node categories with distinct load behaviour.
type ServiceType string

const (
	TypeService  ServiceType = "service"
	TypeDatabase ServiceType = "database"
	TypeCache    ServiceType = "cache"
	TypeExternal ServiceType = "external"
	TypeGateway  ServiceType = "gateway"
)

// Status captures a node's health classification.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Rank orders statuses by severity so callers can compare escalations.
func (s Status) Rank() int {
	switch s {
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	default:
		return 0
	}
}

// ServiceNode is a single service in the dependency topology. Metric fields
// are mutated exclusively by the simulator during propagation; everything
// downstream reads them.
type ServiceNode struct {
	ID                  string      `json:"id" yaml:"id"`
	Name                string      `json:"name" yaml:"name"`
	Type                ServiceType `json:"type" yaml:"type"`
	Tier                string      `json:"tier" yaml:"tier"`
	Status              Status      `json:"status" yaml:"status"`
	CPUUsage            float64     `json:"cpu_usage" yaml:"cpu_usage"`
	MemoryUsage         float64     `json:"memory_usage" yaml:"memory_usage"`
	Latency             float64     `json:"latency" yaml:"latency"`
	RequestsPerMinute   int         `json:"rpm" yaml:"rpm"`
	ErrorRate           float64     `json:"error_rate" yaml:"error_rate"`
	ConnectionPoolUsage float64     `json:"connection_pool_usage" yaml:"connection_pool_usage"`
	QueueDepth          int         `json:"queue_depth" yaml:"queue_depth"`
	CentralityScore     float64     `json:"centrality_score" yaml:"centrality_score"`
}

// DependencyEdge is a directed "depends on" relation between two nodes.
// Immutable once ingested.
type DependencyEdge struct {
	Source     string  `json:"source" yaml:"source"`
	Target     string  `json:"target" yaml:"target"`
	Type       string  `json:"type" yaml:"type"`
	Latency    float64 `json:"latency" yaml:"latency"`
	Throughput int     `json:"throughput" yaml:"throughput"`
}

// Topology is the serializable node/edge representation exchanged with the
// ingestion boundary and returned by simulation passes.
type Topology struct {
	Nodes []ServiceNode    `json:"nodes" yaml:"nodes"`
	Edges []DependencyEdge `json:"edges" yaml:"edges"`
}
