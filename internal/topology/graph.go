package topology

import (
	"fmt"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// Graph owns the directed dependency structure: a node table keyed by id plus
// successor/predecessor adjacency lists. It assumes a single logical owner
// per cycle; callers must serialise Build/mutation against reads.
type Graph struct {
	order []string
	nodes map[string]*models.ServiceNode
	succ  map[string][]string
	pred  map[string][]string
	edges []models.DependencyEdge
}

// New returns an empty graph.
func New() *Graph {
	g := &Graph{}
	g.reset()
	return g
}

func (g *Graph) reset() {
	g.order = nil
	g.nodes = make(map[string]*models.ServiceNode)
	g.succ = make(map[string][]string)
	g.pred = make(map[string][]string)
	g.edges = nil
}

// Build replaces the graph contents. It rejects duplicated node ids and
// edges referencing a missing node, leaving the previous contents untouched
// on failure.
func (g *Graph) Build(nodes []models.ServiceNode, edges []models.DependencyEdge) error {
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return fmt.Errorf("node %q has empty id", n.Name)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for _, e := range edges {
		if _, ok := seen[e.Source]; !ok {
			return fmt.Errorf("edge %s->%s references missing source node", e.Source, e.Target)
		}
		if _, ok := seen[e.Target]; !ok {
			return fmt.Errorf("edge %s->%s references missing target node", e.Source, e.Target)
		}
	}

	g.reset()
	for _, n := range nodes {
		node := n
		g.order = append(g.order, node.ID)
		g.nodes[node.ID] = &node
	}
	for _, e := range edges {
		g.edges = append(g.edges, e)
		g.succ[e.Source] = append(g.succ[e.Source], e.Target)
		g.pred[e.Target] = append(g.pred[e.Target], e.Source)
	}
	return nil
}

// Len returns the node count.
func (g *Graph) Len() int { return len(g.order) }

// Node returns the mutable node record for id.
func (g *Graph) Node(id string) (*models.ServiceNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	return append([]string(nil), g.order...)
}

// Successors returns the direct dependents of id.
func (g *Graph) Successors(id string) []string {
	return append([]string(nil), g.succ[id]...)
}

// Predecessors returns the direct dependencies of id.
func (g *Graph) Predecessors(id string) []string {
	return append([]string(nil), g.pred[id]...)
}

// InDegree returns the number of incoming edges for id.
func (g *Graph) InDegree(id string) int { return len(g.pred[id]) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Roots returns all zero-in-degree nodes in insertion order.
func (g *Graph) Roots() []string {
	roots := make([]string, 0)
	for _, id := range g.order {
		if len(g.pred[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Layers partitions nodes reachable from the roots into breadth-first
// layers, so upstream nodes always precede their downstream dependents.
// Nodes unreachable from any root (pure cycles) are not layered.
func (g *Graph) Layers() [][]string {
	visited := make(map[string]struct{})
	frontier := g.Roots()
	for _, id := range frontier {
		visited[id] = struct{}{}
	}

	var layers [][]string
	for len(frontier) > 0 {
		layers = append(layers, frontier)
		var next []string
		for _, id := range frontier {
			for _, s := range g.succ[id] {
				if _, ok := visited[s]; ok {
					continue
				}
				visited[s] = struct{}{}
				next = append(next, s)
			}
		}
		frontier = next
	}
	return layers
}

// Descendants returns every node reachable from id via dependency edges,
// excluding id itself, in breadth-first order.
func (g *Graph) Descendants(id string) []string {
	if _, ok := g.nodes[id]; !ok {
		return nil
	}
	visited := map[string]struct{}{id: {}}
	queue := append([]string(nil), g.succ[id]...)
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		out = append(out, cur)
		queue = append(queue, g.succ[cur]...)
	}
	return out
}

// Export reconstructs the serializable topology. Field values are copied
// verbatim so an export immediately after Build reproduces the input.
func (g *Graph) Export() models.Topology {
	top := models.Topology{
		Nodes: make([]models.ServiceNode, 0, len(g.order)),
		Edges: append([]models.DependencyEdge(nil), g.edges...),
	}
	for _, id := range g.order {
		top.Nodes = append(top.Nodes, *g.nodes[id])
	}
	return top
}
