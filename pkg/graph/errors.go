package graph

import "errors"

var (
	// ErrNoStartNode indicates every node has at least one incoming edge.
	ErrNoStartNode = errors.New("graph has no start node")
	// ErrCyclicGraph indicates the graph contains a directed cycle.
	ErrCyclicGraph = errors.New("graph contains a cycle")
	// ErrInvalidGraph indicates the graph failed structural validation.
	ErrInvalidGraph = errors.New("invalid graph")
)
