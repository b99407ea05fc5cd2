package predictor

import (
	"fmt"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// preventiveActions maps a predicted failure type to concrete steps an
// operator (or the remediation engine) can take before the failure lands.
func preventiveActions(failureType models.FailureType, serviceID string) []string {
	switch failureType {
	case models.FailureCPUExhaustion:
		return []string{
			fmt.Sprintf("Scale %s horizontally before CPU saturates", serviceID),
			"Profile hot code paths and cache expensive computations",
			"Enable CPU-based auto-scaling with a sub-80% target",
		}
	case models.FailureMemoryLeak:
		return []string{
			fmt.Sprintf("Schedule a rolling restart of %s during low traffic", serviceID),
			"Capture a heap profile and compare against the last healthy baseline",
			"Set memory limits with alerting well below the OOM threshold",
		}
	case models.FailureResourceExhaustion:
		return []string{
			fmt.Sprintf("Scale %s vertically: both CPU and memory are near limits", serviceID),
			"Shed non-critical load until capacity is added",
			"Review recent deployments for resource regressions",
		}
	case models.FailureErrorCascade:
		return []string{
			fmt.Sprintf("Enable circuit breakers on callers of %s", serviceID),
			"Check upstream dependencies for the error source",
			"Add retry budgets so transient errors do not amplify",
		}
	case models.FailureLatencySpike:
		return []string{
			fmt.Sprintf("Add timeouts and deadlines on calls into %s", serviceID),
			"Inspect slow queries and external calls on the critical path",
			"Consider read caching for hot lookups",
		}
	default:
		return []string{
			fmt.Sprintf("Monitor %s closely and review recent changes", serviceID),
			"Verify alerting thresholds cover the degrading metrics",
		}
	}
}
