package predictor

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// trendHorizonMinutes is how far ahead PredictMetricTrend extrapolates.
const trendHorizonMinutes = 30

// PredictMetricTrend extrapolates a per-service metric series 30 minutes
// ahead using the average step over the last (up to) 20 points. Confidence
// falls with step variance but stays within [50,95]. ok is false when fewer
// than three points are available.
func (p *Predictor) PredictMetricTrend(serviceID, metricName string, points []models.MetricPoint) (models.TrendPrediction, bool) {
	if len(points) < 3 {
		return models.TrendPrediction{}, false
	}
	if len(points) > 20 {
		points = points[len(points)-20:]
	}

	steps := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		steps = append(steps, points[i].Value-points[i-1].Value)
	}
	avgStep := meanFloat(steps)
	variance := varianceFloat(steps, avgStep)

	current := points[len(points)-1].Value
	predicted := current + avgStep*trendHorizonMinutes
	predicted = math.Max(0, math.Min(100, predicted))

	confidence := math.Max(50, math.Min(95, 95-variance*10))

	threshold := metricThreshold(metricName)
	eta := models.NoImminentFailure
	if avgStep > 0 && current < threshold {
		if minutes := int((threshold - current) / avgStep); minutes < eta {
			eta = maxInt(1, minutes)
		}
	}

	severity := "low"
	switch {
	case predicted >= threshold:
		severity = "critical"
	case predicted >= threshold*0.85:
		severity = "high"
	case avgStep > 0:
		severity = "medium"
	}

	return models.TrendPrediction{
		PredictionID:    uuid.NewString(),
		TargetService:   serviceID,
		MetricName:      metricName,
		CurrentValue:    current,
		PredictedValue:  predicted,
		PredictedAt:     time.Now().Add(trendHorizonMinutes * time.Minute),
		Confidence:      confidence,
		TimeToThreshold: eta,
		Severity:        severity,
		Recommendation:  trendRecommendation(serviceID, metricName, predicted, threshold),
	}, true
}

// metricThreshold is the per-metric level treated as failure territory.
func metricThreshold(metricName string) float64 {
	switch metricName {
	case "error_rate":
		return 15
	case "latency":
		return 2000
	default:
		return 95
	}
}

func trendRecommendation(serviceID, metricName string, predicted, threshold float64) string {
	if predicted < threshold*0.85 {
		return fmt.Sprintf("No action needed for %s %s yet; keep monitoring", serviceID, metricName)
	}
	switch metricName {
	case "cpu_usage":
		return fmt.Sprintf("Scale %s before CPU crosses %.0f%%", serviceID, threshold)
	case "memory_usage":
		return fmt.Sprintf("Restart or scale %s before memory crosses %.0f%%", serviceID, threshold)
	case "error_rate":
		return fmt.Sprintf("Investigate %s errors before the rate crosses %.0f%%", serviceID, threshold)
	case "latency":
		return fmt.Sprintf("Review %s critical path before latency crosses %.0fms", serviceID, threshold)
	default:
		return fmt.Sprintf("Review %s %s growth", serviceID, metricName)
	}
}

func meanFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceFloat(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
