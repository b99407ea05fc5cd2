package predictor

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

const (
	// minReportedProbability suppresses predictions that accumulate less
	// evidence than this.
	minReportedProbability = 15
	probabilityFloor       = 5
	probabilityCeiling     = 95
)

// Predictor estimates near-term per-service failures and cascade exposure
// from the current graph plus tracked history.
type Predictor struct {
	logger *slog.Logger
}

// New constructs a Predictor.
func New(logger *slog.Logger) *Predictor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Predictor{logger: logger}
}

// PredictFailure accumulates a failure probability for one service from
// independent weighted contributions: current resource tiers, type baseline,
// centrality, short-term history deltas, current status, and a deterministic
// id-derived perturbation. The total is clamped to [5,95] and predictions
// below 15 are suppressed (ok=false). Aggregate trends stand in when the
// service has too little history of its own.
func (p *Predictor) PredictFailure(node models.ServiceNode, trends map[string]models.TrendAnalysis, history models.ServiceHistory) (models.FailurePrediction, bool) {
	var probability float64
	var factors []string
	estimated := models.NoImminentFailure
	failureType := models.FailurePerformanceDegradation

	// Current resource tiers.
	switch {
	case node.CPUUsage > 90:
		probability += 35
		factors = append(factors, fmt.Sprintf("Critical CPU usage at %.1f%%", node.CPUUsage))
		failureType = models.FailureCPUExhaustion
	case node.CPUUsage > 80:
		probability += 20
		factors = append(factors, fmt.Sprintf("High CPU usage at %.1f%%", node.CPUUsage))
	case node.CPUUsage > 70:
		probability += 12
		factors = append(factors, fmt.Sprintf("Elevated CPU usage at %.1f%%", node.CPUUsage))
	case node.CPUUsage > 60:
		probability += 6
		factors = append(factors, fmt.Sprintf("Moderate CPU usage at %.1f%%", node.CPUUsage))
	}

	switch {
	case node.MemoryUsage > 90:
		probability += 35
		factors = append(factors, fmt.Sprintf("Critical memory usage at %.1f%%", node.MemoryUsage))
		if failureType == models.FailureCPUExhaustion {
			failureType = models.FailureResourceExhaustion
		} else {
			failureType = models.FailureMemoryLeak
		}
	case node.MemoryUsage > 85:
		probability += 18
		factors = append(factors, fmt.Sprintf("High memory usage at %.1f%%", node.MemoryUsage))
	case node.MemoryUsage > 75:
		probability += 10
		factors = append(factors, fmt.Sprintf("Elevated memory usage at %.1f%%", node.MemoryUsage))
	case node.MemoryUsage > 65:
		probability += 5
		factors = append(factors, fmt.Sprintf("Moderate memory usage at %.1f%%", node.MemoryUsage))
	}

	switch {
	case node.ErrorRate > 10:
		probability += 30
		factors = append(factors, fmt.Sprintf("High error rate at %.1f%%", node.ErrorRate))
		failureType = models.FailureErrorCascade
	case node.ErrorRate > 5:
		probability += 15
		factors = append(factors, fmt.Sprintf("Elevated error rate at %.1f%%", node.ErrorRate))
	case node.ErrorRate > 2:
		probability += 8
		factors = append(factors, fmt.Sprintf("Moderate error rate at %.1f%%", node.ErrorRate))
	case node.ErrorRate > 0.5:
		probability += 3
		factors = append(factors, fmt.Sprintf("Low error rate at %.1f%%", node.ErrorRate))
	}

	// Latency and connection-pool saturation.
	switch {
	case node.Latency > 1000:
		probability += 12
		factors = append(factors, fmt.Sprintf("High latency at %.0fms", node.Latency))
		if failureType == models.FailurePerformanceDegradation {
			failureType = models.FailureLatencySpike
		}
	case node.Latency > 500:
		probability += 6
		factors = append(factors, fmt.Sprintf("Elevated latency at %.0fms", node.Latency))
	}

	switch {
	case node.ConnectionPoolUsage > 85:
		probability += 15
		factors = append(factors, fmt.Sprintf("Connection pool near saturation at %.1f%%", node.ConnectionPoolUsage))
	case node.ConnectionPoolUsage > 70:
		probability += 8
		factors = append(factors, fmt.Sprintf("High connection pool usage at %.1f%%", node.ConnectionPoolUsage))
	}

	// Service-type baseline: databases carry the highest blast radius.
	switch node.Type {
	case models.TypeDatabase:
		probability += 5
		factors = append(factors, "Database service - higher impact")
	case models.TypeCache:
		probability += 2
	}

	switch {
	case node.CentralityScore > 0.3:
		probability += 8
		factors = append(factors, fmt.Sprintf("High centrality node (%.2f) - critical to system", node.CentralityScore))
	case node.CentralityScore > 0.15:
		probability += 4
		factors = append(factors, fmt.Sprintf("Important node (%.2f)", node.CentralityScore))
	}

	// Short-term deltas over the recent history tail.
	probability, estimated = p.applyHistory(node, trends, history, probability, estimated, &factors)

	// Current status.
	switch node.Status {
	case models.StatusCritical:
		probability += 25
		factors = append(factors, "Service already in critical state")
		if estimated > 15 {
			estimated = 15
		}
	case models.StatusWarning:
		probability += 12
		factors = append(factors, "Service in warning state")
	}

	// Deterministic perturbation so near-identical services stay
	// distinguishable across runs.
	probability += perturbation(node)

	probability = math.Max(probabilityFloor, math.Min(probabilityCeiling, probability))
	if probability < minReportedProbability {
		return models.FailurePrediction{}, false
	}

	pred := models.FailurePrediction{
		ServiceID:           node.ID,
		Probability:         probability,
		EstimatedMinutes:    estimated,
		FailureType:         failureType,
		ContributingFactors: factors,
		PreventiveActions:   preventiveActions(failureType, node.ID),
		Severity:            severityBand(probability),
	}
	return pred, true
}

// applyHistory folds trend evidence into the probability: a large recent
// CPU or memory rise adds weight and tightens the time-to-failure estimate.
func (p *Predictor) applyHistory(node models.ServiceNode, trends map[string]models.TrendAnalysis, history models.ServiceHistory, probability float64, estimated int, factors *[]string) (float64, int) {
	cpuValues := tailValues(history.CPU, 10)
	memValues := tailValues(history.Memory, 10)
	errValues := tailValues(history.Errors, 5)

	if len(cpuValues) >= 3 {
		change := cpuValues[len(cpuValues)-1] - cpuValues[0]
		if change > 15 {
			probability += 10
			*factors = append(*factors, fmt.Sprintf("CPU increased by %.1f%% recently", change))
			if eta := extrapolateMinutes(95-node.CPUUsage, change, len(cpuValues)); eta < estimated {
				estimated = eta
			}
		} else if change > 5 {
			probability += 5
			*factors = append(*factors, "CPU usage trending upward")
		}
	}
	if len(memValues) >= 3 {
		change := memValues[len(memValues)-1] - memValues[0]
		if change > 15 {
			probability += 10
			*factors = append(*factors, fmt.Sprintf("Memory increased by %.1f%% recently", change))
			if eta := extrapolateMinutes(95-node.MemoryUsage, change, len(memValues)); eta < estimated {
				estimated = eta
			}
		} else if change > 5 {
			probability += 5
			*factors = append(*factors, "Memory usage trending upward")
		}
	}
	if len(errValues) >= 2 && errValues[len(errValues)-1] > errValues[0] {
		probability += 8
		*factors = append(*factors, "Error rate increasing")
	}

	// With too little per-service history, rising system-wide resource
	// trends are weak supporting evidence.
	if len(cpuValues) < 3 && len(memValues) < 3 {
		for _, name := range []string{"cpu_usage", "memory_usage"} {
			if trend, ok := trends[name]; ok && trend.Direction == models.TrendIncreasing {
				probability += 5
				*factors = append(*factors, fmt.Sprintf("System-wide %s trending upward", name))
				break
			}
		}
	}

	return probability, estimated
}

// extrapolateMinutes projects minutes until the remaining headroom is
// consumed at the observed per-sample rate (samples are ~5 minutes apart at
// the default cycle cadence).
func extrapolateMinutes(headroom, change float64, samples int) int {
	if change <= 0 || headroom <= 0 {
		return models.NoImminentFailure
	}
	eta := int(headroom / (change / float64(samples)) * 5)
	if eta < 1 {
		eta = 1
	}
	if eta > models.NoImminentFailure {
		eta = models.NoImminentFailure
	}
	return eta
}

func severityBand(probability float64) string {
	switch {
	case probability > 70:
		return "critical"
	case probability > 50:
		return "high"
	case probability > 30:
		return "medium"
	default:
		return "low"
	}
}

// perturbation derives a small deterministic offset from the service id
// (FNV-1a) and current metrics, replacing incidental runtime randomness.
func perturbation(node models.ServiceNode) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(node.ID))
	idTerm := float64(h.Sum32()%15) - 7
	metricTerm := math.Mod(node.CPUUsage*0.1+node.MemoryUsage*0.1+node.ErrorRate*0.5, 10)
	return idTerm + metricTerm
}

func tailValues(points []models.MetricPoint, n int) []float64 {
	if len(points) > n {
		points = points[len(points)-n:]
	}
	out := make([]float64, 0, len(points))
	for _, p := range points {
		out = append(out, p.Value)
	}
	return out
}
