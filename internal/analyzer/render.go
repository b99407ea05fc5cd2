package analyzer

import (
	"fmt"
	"strings"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// RenderReason turns structured signal observations into the human-readable
// reason text carried by a BottleneckNode. Scoring itself never formats
// strings; this is the presentation boundary.
func RenderReason(signals []models.SignalObservation) string {
	if len(signals) == 0 {
		return ""
	}
	parts := make([]string, 0, len(signals))
	for _, s := range signals {
		parts = append(parts, renderSignal(s))
	}
	return strings.Join(parts, "; ")
}

func renderSignal(s models.SignalObservation) string {
	switch s.Kind {
	case models.SignalCPU:
		return fmt.Sprintf("%s CPU usage at %.1f%%", tierWord(s.Tier, "elevated", "high", "critical"), s.Value)
	case models.SignalMemory:
		return fmt.Sprintf("%s memory usage at %.1f%%", tierWord(s.Tier, "high", "critical", "critical"), s.Value)
	case models.SignalCentrality:
		return fmt.Sprintf("%s dependency centrality (%.2f)", tierWord(s.Tier, "significant", "critical-path"), s.Value)
	case models.SignalConnectionPool:
		return fmt.Sprintf("connection pool at %.1f%%", s.Value)
	case models.SignalErrorRate:
		return fmt.Sprintf("elevated error rate at %.1f%%", s.Value)
	case models.SignalLatency:
		return fmt.Sprintf("latency at %.0fms", s.Value)
	default:
		return fmt.Sprintf("%s at %.1f", string(s.Kind), s.Value)
	}
}

func tierWord(tier int, words ...string) string {
	if tier < 1 || tier > len(words) {
		return words[len(words)-1]
	}
	return words[tier-1]
}

func describeChain(origin string, descendants []string) string {
	listed := descendants
	truncated := 0
	if len(listed) > 5 {
		truncated = len(listed) - 5
		listed = listed[:5]
	}
	desc := fmt.Sprintf("%s failure would cascade to %d services: %s",
		origin, len(descendants), strings.Join(listed, ", "))
	if truncated > 0 {
		desc += fmt.Sprintf(" (+%d more)", truncated)
	}
	return desc
}
