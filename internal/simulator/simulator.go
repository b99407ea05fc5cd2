package simulator

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
	"github.com/scaleguardhq/scaleguard-engine/internal/topology"
)

// Simulator propagates synthetic traffic load across the topology,
// layer-by-layer from the root nodes, updating per-node metrics and status
// and applying cascading degradation along dependency edges.
type Simulator struct {
	graph  *topology.Graph
	logger *slog.Logger
}

// New constructs a Simulator with an empty graph.
func New(logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{graph: topology.New(), logger: logger}
}

// Build replaces the simulator's graph. Duplicate ids and dangling edges are
// rejected here, at the ingestion boundary, so propagation never sees them.
func (s *Simulator) Build(nodes []models.ServiceNode, edges []models.DependencyEdge) error {
	if err := s.graph.Build(nodes, edges); err != nil {
		return fmt.Errorf("build topology: %w", err)
	}
	return nil
}

// Graph exposes the simulator's current graph for downstream analysis.
func (s *Simulator) Graph() *topology.Graph { return s.graph }

// Simulate advances one traffic pass: throughput grows by growthFactor with
// a bounded per-service jitter, resource metrics follow type-specific load
// curves, statuses escalate against type-specific thresholds, and critical
// high-centrality nodes degrade their downstream dependents. The result is a
// full reconstruction of the graph state with percentages clamped to [0,100].
func (s *Simulator) Simulate(growthFactor float64) models.Topology {
	betweenness := s.graph.Betweenness()
	layers := s.graph.Layers()

	layerIndex := make(map[string]int, s.graph.Len())
	for depth, layer := range layers {
		for _, id := range layer {
			layerIndex[id] = depth
		}
	}

	// Error-rate increases inherited from critical upstream nodes, applied
	// when the successor's own layer is processed so they survive the pass.
	bumps := make(map[string]float64)

	for depth, layer := range layers {
		for _, id := range layer {
			node, ok := s.graph.Node(id)
			if !ok {
				continue
			}

			rpm := node.RequestsPerMinute
			if rpm == 0 {
				rpm = 100
			}
			newRPM := int(float64(rpm) * growthFactor * jitter(id))

			cpu, mem, pool, errRate := loadCurve(node.Type, newRPM)
			if bump := bumps[id]; bump > 0 {
				errRate = math.Min(errRate+bump, 50)
			}

			node.RequestsPerMinute = newRPM
			node.CPUUsage = clampPct(cpu)
			node.MemoryUsage = clampPct(mem)
			node.ConnectionPoolUsage = clampPct(pool)
			node.ErrorRate = clampPct(errRate)
			node.CentralityScore = betweenness[id]
			node.Status = escalate(node)
			if bumps[id] > 0 && node.Status == models.StatusHealthy {
				node.Status = models.StatusWarning
			}

			// Cascade flows only into strictly later layers; nodes within
			// one layer never mutate each other.
			if node.Status == models.StatusCritical && betweenness[id] > 0.2 {
				s.cascade(id, depth, layerIndex, bumps)
			}
		}
	}

	return s.graph.Export()
}

func (s *Simulator) cascade(id string, depth int, layerIndex map[string]int, bumps map[string]float64) {
	for _, succID := range s.graph.Successors(id) {
		succ, ok := s.graph.Node(succID)
		if !ok || succ.Status != models.StatusHealthy {
			continue
		}
		succDepth, reachable := layerIndex[succID]
		if reachable && succDepth <= depth {
			// Same-layer siblings and back-edges are never mutated by a peer.
			continue
		}
		s.logger.Debug("cascading degradation",
			slog.String("origin", id), slog.String("target", succID))
		if reachable {
			bumps[succID] += 10
			continue
		}
		// Successor sits outside the propagation layers; degrade in place.
		succ.Status = models.StatusWarning
		succ.ErrorRate = math.Min(succ.ErrorRate+10, 50)
	}
}

// loadCurve derives resource usage from throughput. Each service type has
// its own superlinear curve: databases saturate fastest and expose
// connection-pool pressure, caches absorb the most load, external services
// fail abruptly.
func loadCurve(t models.ServiceType, rpm int) (cpu, mem, pool, errRate float64) {
	load := float64(rpm)
	switch t {
	case models.TypeDatabase:
		cpu = math.Min(100, math.Pow(load/500, 1.5)*10)
		mem = math.Min(100, math.Pow(load/400, 1.3)*15)
		pool = math.Min(100, load/300*100/50)
	case models.TypeCache:
		cpu = math.Min(100, math.Pow(load/2000, 1.2)*5)
		mem = math.Min(100, math.Pow(load/1500, 1.4)*20)
	case models.TypeExternal:
		cpu = math.Min(100, math.Pow(load/200, 1.8)*15)
		mem = math.Min(100, load/200*10)
	default:
		cpu = math.Min(100, math.Pow(load/1000, 1.3)*10)
		mem = math.Min(100, load/800*20)
	}
	if cpu > 80 {
		errRate = math.Min(50, (cpu-80)*2)
	}
	return cpu, mem, pool, errRate
}

// escalate applies type-specific status thresholds. Databases and external
// services have stricter and additional triggers than generic services.
// Escalation never downgrades a node within a pass.
func escalate(n *models.ServiceNode) models.Status {
	switch n.Type {
	case models.TypeDatabase:
		if n.CPUUsage > 85 || n.MemoryUsage > 90 || n.ConnectionPoolUsage > 95 {
			return models.StatusCritical
		}
		if n.CPUUsage > 70 || n.MemoryUsage > 75 || n.ConnectionPoolUsage > 80 {
			return maxStatus(n.Status, models.StatusWarning)
		}
	case models.TypeExternal:
		if n.CPUUsage > 90 || n.ErrorRate > 15 {
			return models.StatusCritical
		}
		if n.CPUUsage > 75 || n.ErrorRate > 5 {
			return maxStatus(n.Status, models.StatusWarning)
		}
	default:
		if n.CPUUsage > 95 || n.MemoryUsage > 95 {
			return models.StatusCritical
		}
		if n.CPUUsage > 80 || n.MemoryUsage > 80 {
			return maxStatus(n.Status, models.StatusWarning)
		}
	}
	return n.Status
}

func maxStatus(a, b models.Status) models.Status {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
