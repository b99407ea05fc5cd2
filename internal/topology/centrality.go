package topology

// Betweenness computes normalised betweenness centrality for every node
// using Brandes' algorithm over unweighted shortest paths. Degenerate
// graphs (fewer than three nodes, or no edges) yield zero for every node.
func (g *Graph) Betweenness() map[string]float64 {
	scores := make(map[string]float64, len(g.order))
	for _, id := range g.order {
		scores[id] = 0
	}
	n := len(g.order)
	if n < 3 || len(g.edges) == 0 {
		return scores
	}

	for _, source := range g.order {
		// Single-source shortest paths by BFS.
		var stack []string
		preds := make(map[string][]string, n)
		sigma := map[string]float64{source: 1}
		dist := map[string]int{source: 0}

		queue := []string{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.succ[v] {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		// Back-propagate pair dependencies.
		delta := make(map[string]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != source {
				scores[w] += delta[w]
			}
		}
	}

	// Directed normalisation: fraction of (n-1)(n-2) ordered pairs.
	scale := 1.0 / float64((n-1)*(n-2))
	for id := range scores {
		scores[id] *= scale
	}
	return scores
}

// StronglyConnected reports whether every node can reach every other node.
// Graphs with fewer than two nodes are trivially strongly connected.
func (g *Graph) StronglyConnected() bool {
	if len(g.order) < 2 {
		return true
	}
	start := g.order[0]
	if g.reachableCount(start, g.succ) != len(g.order) {
		return false
	}
	return g.reachableCount(start, g.pred) == len(g.order)
}

func (g *Graph) reachableCount(start string, adj map[string][]string) int {
	visited := map[string]struct{}{start: {}}
	queue := []string{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range adj[v] {
			if _, ok := visited[w]; ok {
				continue
			}
			visited[w] = struct{}{}
			queue = append(queue, w)
		}
	}
	return len(visited)
}
