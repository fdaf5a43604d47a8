package pipeline

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/brief/pkg/graph"
)

// Report is the result of validating a graph without running it.
type Report struct {
	Order    []string     `json:"order"`
	Stages   StageSet     `json:"stages"`
	Missing  []graph.Kind `json:"missing,omitempty"`
	Runnable bool         `json:"runnable"`
	Error    string       `json:"error,omitempty"`
}

// Validate traverses g, rejects cycles, and detects stages.
// The returned error wraps ErrValidation for every rule violation
// and graph.ErrInvalidGraph for malformed input.
func Validate(g *graph.Graph) (Report, error) {
	var report Report

	if err := g.Validate(); err != nil {
		report.Error = err.Error()
		return report, err
	}

	order, err := graph.Traverse(g)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrValidation, err)
		report.Error = err.Error()
		return report, err
	}

	report.Order = order.IDs()
	report.Stages = DetectStages(order)

	if graph.HasCycle(g) {
		err := fmt.Errorf("%w: %w", ErrValidation, graph.ErrCyclicGraph)
		report.Error = err.Error()
		return report, err
	}

	report.Missing = report.Stages.Missing()
	if len(report.Missing) > 0 {
		err := fmt.Errorf(
			"%w: %w: %s",
			ErrValidation, ErrMissingRequiredStages,
			joinKinds(report.Missing),
		)
		report.Error = err.Error()
		return report, err
	}

	report.Runnable = true
	return report, nil
}

func joinKinds(kinds []graph.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
