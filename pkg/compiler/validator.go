package compiler

import (
	"fmt"
	"strings"

	"github.com/dukex/campaigner/pkg/models"
)

// Validation messages.
const (
	MessageNoNodes        = "Flow must have at least one node"
	MessageMissingTrigger = "Flow must have a trigger node"
)

// ValidationResult lists every structural problem found in a flow graph.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Err returns a *ValidationError when the result is not valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}

	return &ValidationError{Errors: r.Errors}
}

// ValidationError is returned when a flow graph cannot be compiled.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "flow validation failed: " + strings.Join(e.Errors, ", ")
}

// Validate checks that the graph has nodes, has a trigger and that every
// non-trigger node takes part in at least one edge. All problems are collected.
// Cycles and edges pointing at unknown nodes are accepted.
func Validate(graph *models.FlowGraph) ValidationResult {
	errs := make([]string, 0)

	if graph == nil {
		graph = &models.FlowGraph{}
	}

	if len(graph.Nodes) == 0 {
		errs = append(errs, MessageNoNodes)
	}

	hasTrigger := false

	for _, node := range graph.Nodes {
		if node.IsTrigger() {
			hasTrigger = true

			break
		}
	}

	if !hasTrigger {
		errs = append(errs, MessageMissingTrigger)
	}

	connected := make(map[string]struct{}, len(graph.Edges)*2)
	for _, edge := range graph.Edges {
		connected[edge.Source] = struct{}{}
		connected[edge.Target] = struct{}{}
	}

	for _, node := range graph.Nodes {
		// triggers may stand alone on the input side
		if node.IsTrigger() {
			continue
		}

		if _, ok := connected[node.ID]; !ok {
			errs = append(errs, fmt.Sprintf("Node %q is not connected", node.DisplayName()))
		}
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}
