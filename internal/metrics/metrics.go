package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels cycles that completed.
	OutcomeSuccess = "success"
	// OutcomeError labels cycles that aborted before producing an analysis.
	OutcomeError = "error"
)

var (
	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scaleguard",
			Name:      "cycles_total",
			Help:      "Total number of simulation cycles, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	cycleDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "scaleguard",
			Name:      "cycle_seconds",
			Help:      "Full cycle latency (simulate, analyze, predict, remediate) in seconds.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	systemRiskScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scaleguard",
			Name:      "system_risk_score",
			Help:      "Most recent system-wide risk score (0-100).",
		},
	)

	bottlenecksDetected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scaleguard",
			Name:      "bottlenecks_detected",
			Help:      "Bottlenecks reported by the most recent analysis pass.",
		},
	)

	remediationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scaleguard",
			Name:      "remediations_total",
			Help:      "Remediation actions by action type and terminal status.",
		},
		[]string{"action_type", "status"},
	)
)

// Register attaches scaleguard collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		cyclesTotal,
		cycleDurationSeconds,
		systemRiskScore,
		bottlenecksDetected,
		remediationsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveCycle records one cycle's duration and outcome label.
func ObserveCycle(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	cyclesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	cycleDurationSeconds.Observe(duration.Seconds())
}

// SetRiskScore publishes the latest system-wide risk score.
func SetRiskScore(score float64) {
	systemRiskScore.Set(score)
}

// SetBottleneckCount publishes the latest bottleneck count.
func SetBottleneckCount(count int) {
	bottlenecksDetected.Set(float64(count))
}

// ObserveRemediation counts one terminal remediation outcome.
func ObserveRemediation(actionType, status string) {
	remediationsTotal.WithLabelValues(actionType, status).Inc()
}
