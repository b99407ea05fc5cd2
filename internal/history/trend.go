package history

import (
	"time"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// MetricTrend analyses one aggregate series over the given window. It needs
// at least two in-window points; otherwise ok is false. Direction comes from
// the slope of the most recent (up to) 10 points: a change rate below 5% per
// step is "stable".
func (t *Tracker) MetricTrend(metricName string, windowMinutes int) (models.TrendAnalysis, bool) {
	t.mu.RLock()
	series, exists := t.series[metricName]
	if !exists {
		t.mu.RUnlock()
		return models.TrendAnalysis{}, false
	}
	points := series.items()
	t.mu.RUnlock()

	if len(points) < 2 {
		return models.TrendAnalysis{}, false
	}

	now := t.now()
	cutoff := now.Add(-time.Duration(windowMinutes) * time.Minute)
	recent := filterSince(points, cutoff)
	if len(recent) < 2 {
		return models.TrendAnalysis{}, false
	}

	current := recent[len(recent)-1].Value

	hourValues := valuesSince(points, now.Add(-time.Hour))
	dayValues := valuesSince(points, now.Add(-24*time.Hour))

	trend := models.TrendAnalysis{
		MetricName:   metricName,
		CurrentValue: current,
		AvgLastHour:  meanOr(hourValues, current),
		AvgLastDay:   meanOr(dayValues, current),
		Direction:    models.TrendStable,
	}

	if len(recent) >= 5 {
		tail := recent
		if len(tail) > 10 {
			tail = tail[len(tail)-10:]
		}
		slope := (tail[len(tail)-1].Value - tail[0].Value) / float64(len(tail))
		if tail[0].Value != 0 {
			trend.ChangeRate = slope / tail[0].Value * 100
		}
		switch {
		case trend.ChangeRate >= 5:
			trend.Direction = models.TrendIncreasing
		case trend.ChangeRate <= -5:
			trend.Direction = models.TrendDecreasing
		}
	}

	trend.Severity = classifySeverity(metricName, current)
	return trend, true
}

// AllTrends returns every aggregate series trend with enough data.
func (t *Tracker) AllTrends(windowMinutes int) map[string]models.TrendAnalysis {
	trends := make(map[string]models.TrendAnalysis)
	for _, name := range trackedMetrics {
		if trend, ok := t.MetricTrend(name, windowMinutes); ok {
			trends[name] = trend
		}
	}
	return trends
}

// classifySeverity applies fixed per-metric-family thresholds.
func classifySeverity(metricName string, current float64) string {
	switch metricName {
	case MetricRiskScore:
		if current > 80 {
			return "critical"
		}
		if current > 60 {
			return "warning"
		}
	case MetricCPUUsage, MetricMemoryUsage:
		if current > 90 {
			return "critical"
		}
		if current > 75 {
			return "warning"
		}
	case MetricErrorRate:
		if current > 10 {
			return "critical"
		}
		if current > 5 {
			return "warning"
		}
	}
	return "normal"
}

func filterSince(points []models.MetricPoint, cutoff time.Time) []models.MetricPoint {
	var out []models.MetricPoint
	for _, p := range points {
		if !p.Timestamp.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

func valuesSince(points []models.MetricPoint, cutoff time.Time) []float64 {
	var out []float64
	for _, p := range points {
		if !p.Timestamp.Before(cutoff) {
			out = append(out, p.Value)
		}
	}
	return out
}

func meanOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
