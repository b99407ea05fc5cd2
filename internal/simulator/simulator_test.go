package simulator

import (
	"testing"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

func svc(id string, serviceType models.ServiceType, rpm int) models.ServiceNode {
	return models.ServiceNode{
		ID:                id,
		Name:              id,
		Type:              serviceType,
		Status:            models.StatusHealthy,
		RequestsPerMinute: rpm,
	}
}

func dep(src, dst string) models.DependencyEdge {
	return models.DependencyEdge{Source: src, Target: dst, Type: "http"}
}

func TestJitterBoundedAndDeterministic(t *testing.T) {
	ids := []string{"auth-service", "user-db", "cache-redis", "stripe-api"}
	for _, id := range ids {
		j := jitter(id)
		if j < 0.9 || j > 1.1 {
			t.Fatalf("jitter for %s out of range: %f", id, j)
		}
		if j != jitter(id) {
			t.Fatalf("jitter for %s not deterministic", id)
		}
	}
}

func TestSimulateMetricsStayInRange(t *testing.T) {
	s := New(nil)
	nodes := []models.ServiceNode{
		svc("web", models.TypeService, 5000),
		svc("db", models.TypeDatabase, 8000),
		svc("cache", models.TypeCache, 9000),
		svc("ext", models.TypeExternal, 4000),
	}
	if err := s.Build(nodes, nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	out := s.Simulate(3.0)
	for _, n := range out.Nodes {
		if n.CPUUsage < 0 || n.CPUUsage > 100 {
			t.Fatalf("%s cpu out of range: %f", n.ID, n.CPUUsage)
		}
		if n.MemoryUsage < 0 || n.MemoryUsage > 100 {
			t.Fatalf("%s memory out of range: %f", n.ID, n.MemoryUsage)
		}
		if n.ErrorRate < 0 || n.ErrorRate > 100 {
			t.Fatalf("%s error rate out of range: %f", n.ID, n.ErrorRate)
		}
		if n.ConnectionPoolUsage < 0 || n.ConnectionPoolUsage > 100 {
			t.Fatalf("%s pool out of range: %f", n.ID, n.ConnectionPoolUsage)
		}
	}
}

func TestDatabaseSaturatesUnderLoad(t *testing.T) {
	s := New(nil)
	if err := s.Build([]models.ServiceNode{svc("db", models.TypeDatabase, 5000)}, nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	out := s.Simulate(1.0)
	if out.Nodes[0].Status != models.StatusCritical {
		t.Fatalf("expected critical database at 5000 rpm, got %s", out.Nodes[0].Status)
	}
	if out.Nodes[0].CPUUsage < 85 {
		t.Fatalf("expected saturated CPU, got %f", out.Nodes[0].CPUUsage)
	}
}

func TestCriticalHubDegradesDependents(t *testing.T) {
	s := New(nil)
	// Two roots funnel through an overloaded database hub feeding two
	// lightly loaded services, giving the hub centrality above 0.2.
	nodes := []models.ServiceNode{
		svc("x1", models.TypeService, 100),
		svc("x2", models.TypeService, 100),
		svc("hub-db", models.TypeDatabase, 6000),
		svc("b1", models.TypeService, 100),
		svc("b2", models.TypeService, 100),
	}
	edges := []models.DependencyEdge{
		dep("x1", "hub-db"), dep("x2", "hub-db"),
		dep("hub-db", "b1"), dep("hub-db", "b2"),
	}
	if err := s.Build(nodes, edges); err != nil {
		t.Fatalf("build: %v", err)
	}

	out := s.Simulate(1.0)
	byID := make(map[string]models.ServiceNode)
	for _, n := range out.Nodes {
		byID[n.ID] = n
	}

	hub := byID["hub-db"]
	if hub.Status != models.StatusCritical {
		t.Fatalf("expected critical hub, got %s", hub.Status)
	}
	if hub.CentralityScore <= 0.2 {
		t.Fatalf("expected hub centrality above 0.2, got %f", hub.CentralityScore)
	}
	for _, id := range []string{"b1", "b2"} {
		n := byID[id]
		if n.Status == models.StatusHealthy {
			t.Fatalf("expected %s degraded by upstream hub, got healthy", id)
		}
		if n.ErrorRate < 10 {
			t.Fatalf("expected %s elevated error rate, got %f", id, n.ErrorRate)
		}
	}
}

func TestCascadeSkipsSameLayerSiblings(t *testing.T) {
	s := New(nil)
	// x and y share a BFS layer (both fed by root a), yet x also carries an
	// edge to y. x goes critical with centrality above 0.2; its degradation
	// must reach the later-layer d1/d2 but never its sibling y.
	nodes := []models.ServiceNode{
		svc("a", models.TypeService, 100),
		svc("b", models.TypeService, 100),
		svc("x", models.TypeDatabase, 6000),
		svc("y", models.TypeService, 100),
		svc("d1", models.TypeService, 100),
		svc("d2", models.TypeService, 100),
	}
	edges := []models.DependencyEdge{
		dep("a", "x"), dep("a", "y"), dep("b", "x"),
		dep("x", "d1"), dep("x", "d2"), dep("x", "y"),
	}
	if err := s.Build(nodes, edges); err != nil {
		t.Fatalf("build: %v", err)
	}

	out := s.Simulate(1.0)
	byID := make(map[string]models.ServiceNode)
	for _, n := range out.Nodes {
		byID[n.ID] = n
	}

	if byID["x"].Status != models.StatusCritical {
		t.Fatalf("expected critical x, got %s", byID["x"].Status)
	}
	if byID["x"].CentralityScore <= 0.2 {
		t.Fatalf("expected x centrality above 0.2, got %f", byID["x"].CentralityScore)
	}
	for _, id := range []string{"d1", "d2"} {
		if byID[id].Status == models.StatusHealthy {
			t.Fatalf("expected %s degraded by upstream x, got healthy", id)
		}
		if byID[id].ErrorRate < 10 {
			t.Fatalf("expected %s elevated error rate, got %f", id, byID[id].ErrorRate)
		}
	}
	y := byID["y"]
	if y.Status != models.StatusHealthy {
		t.Fatalf("same-layer sibling y mutated by x: status %s", y.Status)
	}
	if y.ErrorRate != 0 {
		t.Fatalf("same-layer sibling y received an error-rate bump: %f", y.ErrorRate)
	}
}

func TestStatusNeverDowngradesAcrossPasses(t *testing.T) {
	s := New(nil)
	if err := s.Build([]models.ServiceNode{svc("db", models.TypeDatabase, 5000)}, nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	first := s.Simulate(1.0)
	// Shrinking traffic must not downgrade the status within the pass.
	second := s.Simulate(0.01)
	if second.Nodes[0].Status.Rank() < first.Nodes[0].Status.Rank() {
		t.Fatalf("status downgraded from %s to %s", first.Nodes[0].Status, second.Nodes[0].Status)
	}
}

func TestSimulateDefaultsZeroRPM(t *testing.T) {
	s := New(nil)
	if err := s.Build([]models.ServiceNode{svc("idle", models.TypeService, 0)}, nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	out := s.Simulate(1.0)
	if out.Nodes[0].RequestsPerMinute == 0 {
		t.Fatalf("expected zero rpm to fall back to the baseline")
	}
}
