package models

import "time"

// MetricSnapshot is an immutable point-in-time capture of system-wide
// metrics, appended to the tracker's bounded ring buffer.
type MetricSnapshot struct {
	Timestamp        time.Time          `json:"timestamp"`
	RiskScore        float64            `json:"risk_score"`
	CPUUsage         map[string]float64 `json:"cpu_usage"`
	MemoryUsage      map[string]float64 `json:"memory_usage"`
	ErrorRates       map[string]float64 `json:"error_rates"`
	Latencies        map[string]float64 `json:"latencies"`
	BottleneckCount  int                `json:"bottleneck_count"`
	CriticalServices []string           `json:"critical_services"`
}

// TrendDirection classifies the slope of a metric series.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// TrendAnalysis is a transient windowed view over one aggregate metric.
type TrendAnalysis struct {
	MetricName   string         `json:"metric_name"`
	CurrentValue float64        `json:"current_value"`
	AvgLastHour  float64        `json:"avg_last_hour"`
	AvgLastDay   float64        `json:"avg_last_day"`
	Direction    TrendDirection `json:"trend_direction"`
	ChangeRate   float64        `json:"change_rate"`
	Severity     string         `json:"severity"`
}

// MetricPoint is one timestamped sample of a scalar series.
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ServiceHistory holds the windowed per-service metric series extracted from
// stored snapshots.
type ServiceHistory struct {
	ServiceID string        `json:"service_id"`
	CPU       []MetricPoint `json:"cpu_history"`
	Memory    []MetricPoint `json:"memory_history"`
	Errors    []MetricPoint `json:"error_history"`
	Latency   []MetricPoint `json:"latency_history"`
}

// TrackerStatistics summarises the tracker's stored data.
type TrackerStatistics struct {
	TotalSnapshots int       `json:"total_snapshots"`
	OldestSnapshot time.Time `json:"oldest_snapshot"`
	NewestSnapshot time.Time `json:"newest_snapshot"`
	CoverageHours  float64   `json:"coverage_hours"`
	MetricsTracked []string  `json:"metrics_tracked"`
}
