package graph

// Order is the execution order produced by Traverse.
// It may be a strict subset of the graph's nodes.
type Order []Node

// IDs returns the node ids of the order.
func (o Order) IDs() []string {
	ids := make([]string, len(o))
	for i, n := range o {
		ids[i] = n.ID
	}
	return ids
}

// Kinds returns the node kinds of the order.
func (o Order) Kinds() []Kind {
	kinds := make([]Kind, len(o))
	for i, n := range o {
		kinds[i] = n.Kind
	}
	return kinds
}

// StartNodes returns the nodes with no incoming edge, in node declaration order.
func StartNodes(g *Graph) []Node {
	_, indegree := g.adjacency()

	var starts []Node
	for _, n := range g.Nodes {
		if indegree[n.ID] == 0 {
			starts = append(starts, n)
		}
	}
	return starts
}

// Traverse computes a breadth-first execution order seeded by the start nodes.
// Each reachable node appears exactly once; unreachable nodes are omitted.
// Returns ErrNoStartNode when no node has an indegree of zero.
func Traverse(g *Graph) (Order, error) {
	starts := StartNodes(g)
	if len(starts) == 0 {
		return nil, ErrNoStartNode
	}

	out, _ := g.adjacency()
	nodes := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}

	queue := make([]string, 0, len(g.Nodes))
	for _, n := range starts {
		queue = append(queue, n.ID)
	}

	visited := make(map[string]struct{}, len(g.Nodes))
	order := make(Order, 0, len(g.Nodes))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		order = append(order, nodes[id])

		queue = append(queue, out[id]...)
	}

	return order, nil
}

// HasCycle reports whether the graph contains a directed cycle
// among edges that connect existing nodes.
func HasCycle(g *Graph) bool {
	out, indegree := g.adjacency()

	queue := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	removed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		removed++

		for _, target := range out[id] {
			indegree[target]--
			if indegree[target] == 0 {
				queue = append(queue, target)
			}
		}
	}

	return removed < len(g.Nodes)
}
