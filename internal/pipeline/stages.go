package pipeline

import (
	"slices"

	"github.com/JaimeStill/brief/pkg/graph"
)

// Required lists the stage kinds that must all be reachable for a graph to run.
var Required = []graph.Kind{
	graph.KindOpenDocument,
	graph.KindExtractText,
	graph.KindSummarize,
}

// sequence is the fixed execution order of stage kinds. Kinds absent from
// the graph are skipped; unrecognized kinds never execute.
var sequence = []graph.Kind{
	graph.KindOpenDocument,
	graph.KindExtractText,
	graph.KindSummarize,
	graph.KindSendEmail,
	graph.KindShowEmailCount,
}

// StageSet is the set of stage kinds present in an execution order,
// in order of first appearance.
type StageSet []graph.Kind

// DetectStages scans order once and records which kinds appear.
// Detection is by kind only; labels are never consulted.
func DetectStages(order graph.Order) StageSet {
	set := make(StageSet, 0, len(sequence))
	for _, n := range order {
		if !slices.Contains(set, n.Kind) {
			set = append(set, n.Kind)
		}
	}
	return set
}

// Has reports whether kind is present.
func (s StageSet) Has(kind graph.Kind) bool {
	return slices.Contains(s, kind)
}

// Missing returns the required kinds absent from the set.
func (s StageSet) Missing() []graph.Kind {
	var missing []graph.Kind
	for _, kind := range Required {
		if !s.Has(kind) {
			missing = append(missing, kind)
		}
	}
	return missing
}

// Runnable reports whether every required kind is present.
func (s StageSet) Runnable() bool {
	return len(s.Missing()) == 0
}
