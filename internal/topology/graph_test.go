package topology

import (
	"testing"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

func node(id string) models.ServiceNode {
	return models.ServiceNode{ID: id, Name: id, Type: models.TypeService, Status: models.StatusHealthy}
}

func edge(src, dst string) models.DependencyEdge {
	return models.DependencyEdge{Source: src, Target: dst, Type: "http"}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	g := New()
	err := g.Build([]models.ServiceNode{node("a"), node("a")}, nil)
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestBuildRejectsDanglingEdges(t *testing.T) {
	g := New()
	err := g.Build([]models.ServiceNode{node("a")}, []models.DependencyEdge{edge("a", "ghost")})
	if err == nil {
		t.Fatalf("expected dangling edge error")
	}
}

func TestBuildFailureKeepsPreviousContents(t *testing.T) {
	g := New()
	if err := g.Build([]models.ServiceNode{node("a")}, nil); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := g.Build([]models.ServiceNode{node("b"), node("b")}, nil); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := g.Node("a"); !ok {
		t.Fatalf("previous contents should survive a failed build")
	}
}

func TestLayersOrderUpstreamFirst(t *testing.T) {
	g := New()
	nodes := []models.ServiceNode{node("web"), node("svc"), node("db"), node("cache")}
	edges := []models.DependencyEdge{edge("web", "svc"), edge("svc", "db"), edge("svc", "cache")}
	if err := g.Build(nodes, edges); err != nil {
		t.Fatalf("build: %v", err)
	}

	layers := g.Layers()
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(layers))
	}
	if layers[0][0] != "web" {
		t.Fatalf("expected web in first layer, got %v", layers[0])
	}
	if len(layers[2]) != 2 {
		t.Fatalf("expected db and cache in last layer, got %v", layers[2])
	}
}

func TestDescendants(t *testing.T) {
	g := New()
	nodes := []models.ServiceNode{node("a"), node("b"), node("c"), node("d")}
	edges := []models.DependencyEdge{edge("a", "b"), edge("b", "c"), edge("a", "d")}
	if err := g.Build(nodes, edges); err != nil {
		t.Fatalf("build: %v", err)
	}

	desc := g.Descendants("a")
	if len(desc) != 3 {
		t.Fatalf("expected 3 descendants of a, got %v", desc)
	}
	if len(g.Descendants("c")) != 0 {
		t.Fatalf("leaf should have no descendants")
	}
	if g.Descendants("missing") != nil {
		t.Fatalf("unknown node should return nil")
	}
}

func TestBetweennessZeroWithoutEdges(t *testing.T) {
	g := New()
	if err := g.Build([]models.ServiceNode{node("a"), node("b"), node("c")}, nil); err != nil {
		t.Fatalf("build: %v", err)
	}
	for id, score := range g.Betweenness() {
		if score != 0 {
			t.Fatalf("expected zero centrality for %s, got %f", id, score)
		}
	}
}

func TestBetweennessMiddleOfPath(t *testing.T) {
	g := New()
	nodes := []models.ServiceNode{node("a"), node("b"), node("c")}
	edges := []models.DependencyEdge{edge("a", "b"), edge("b", "c")}
	if err := g.Build(nodes, edges); err != nil {
		t.Fatalf("build: %v", err)
	}

	scores := g.Betweenness()
	// b sits on the only a->c shortest path; normalization is 1/((n-1)(n-2)).
	if scores["b"] != 0.5 {
		t.Fatalf("expected b centrality 0.5, got %f", scores["b"])
	}
	if scores["a"] != 0 || scores["c"] != 0 {
		t.Fatalf("endpoints should have zero centrality, got a=%f c=%f", scores["a"], scores["c"])
	}
}

func TestStronglyConnected(t *testing.T) {
	g := New()
	nodes := []models.ServiceNode{node("a"), node("b"), node("c")}
	cycle := []models.DependencyEdge{edge("a", "b"), edge("b", "c"), edge("c", "a")}
	if err := g.Build(nodes, cycle); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !g.StronglyConnected() {
		t.Fatalf("cycle should be strongly connected")
	}

	chain := []models.DependencyEdge{edge("a", "b"), edge("b", "c")}
	if err := g.Build(nodes, chain); err != nil {
		t.Fatalf("build: %v", err)
	}
	if g.StronglyConnected() {
		t.Fatalf("chain should not be strongly connected")
	}
}

func TestExportRoundTrip(t *testing.T) {
	g := New()
	nodes := []models.ServiceNode{node("a"), node("b")}
	edges := []models.DependencyEdge{edge("a", "b")}
	if err := g.Build(nodes, edges); err != nil {
		t.Fatalf("build: %v", err)
	}

	out := g.Export()
	if len(out.Nodes) != 2 || len(out.Edges) != 1 {
		t.Fatalf("unexpected export shape: %d nodes, %d edges", len(out.Nodes), len(out.Edges))
	}
	if out.Nodes[0].ID != "a" || out.Nodes[1].ID != "b" {
		t.Fatalf("export should keep insertion order, got %v", []string{out.Nodes[0].ID, out.Nodes[1].ID})
	}
}
