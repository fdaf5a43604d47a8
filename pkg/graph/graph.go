// Package graph provides the workflow graph model: nodes tagged with a stage kind,
// directed edges between them, adjacency queries, and breadth-first traversal.
//
// A Graph is read-only input to the pipeline engine. Edges that reference a
// node id not present in the graph are ignored by every query rather than rejected.
package graph

// Kind identifies the pipeline semantics of a node.
// The set is open: unrecognized kinds are carried by the model and ignored by the engine.
type Kind string

const (
	KindOpenDocument   Kind = "open-document"
	KindExtractText    Kind = "extract-text"
	KindSummarize      Kind = "summarize"
	KindSendEmail      Kind = "send-email"
	KindShowEmailCount Kind = "show-email-count"
)

// Kinds returns the stage kinds with defined pipeline semantics.
func Kinds() []Kind {
	return []Kind{
		KindOpenDocument,
		KindExtractText,
		KindSummarize,
		KindSendEmail,
		KindShowEmailCount,
	}
}

// Node is a single stage in the workflow graph.
// Label is presentation-only and carries no pipeline semantics.
type Node struct {
	ID    string `json:"id" validate:"required"`
	Kind  Kind   `json:"kind" validate:"required"`
	Label string `json:"label,omitempty"`
}

// Edge is a directed connection from Source to Target.
type Edge struct {
	ID     string `json:"id" validate:"required"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// Graph holds the nodes and edges of a workflow in declaration order.
type Graph struct {
	Nodes []Node `json:"nodes" validate:"unique=ID,dive"`
	Edges []Edge `json:"edges" validate:"unique=ID,dive"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Incoming returns the distinct source ids of edges targeting id.
// Edges whose source or target is not a node in the graph are skipped.
func (g *Graph) Incoming(id string) []string {
	ids := g.index()
	if _, ok := ids[id]; !ok {
		return nil
	}

	var sources []string
	seen := make(map[string]struct{})
	for _, e := range g.Edges {
		if e.Target != id {
			continue
		}
		if _, ok := ids[e.Source]; !ok {
			continue
		}
		if _, dup := seen[e.Source]; dup {
			continue
		}
		seen[e.Source] = struct{}{}
		sources = append(sources, e.Source)
	}
	return sources
}

// Outgoing returns the target ids of edges leaving id, in edge declaration order.
// Edges whose source or target is not a node in the graph are skipped.
func (g *Graph) Outgoing(id string) []string {
	ids := g.index()
	if _, ok := ids[id]; !ok {
		return nil
	}

	var targets []string
	for _, e := range g.Edges {
		if e.Source != id {
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			continue
		}
		targets = append(targets, e.Target)
	}
	return targets
}

func (g *Graph) index() map[string]struct{} {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	return ids
}

// adjacency builds the outgoing adjacency list and indegree of every node
// from the edges that connect two existing nodes.
func (g *Graph) adjacency() (map[string][]string, map[string]int) {
	ids := g.index()
	out := make(map[string][]string, len(g.Nodes))
	indegree := make(map[string]int, len(g.Nodes))

	for _, n := range g.Nodes {
		indegree[n.ID] = 0
	}

	for _, e := range g.Edges {
		if _, ok := ids[e.Source]; !ok {
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			continue
		}
		out[e.Source] = append(out[e.Source], e.Target)
		indegree[e.Target]++
	}

	return out, indegree
}
