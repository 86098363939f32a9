package compiler

import "github.com/dukex/campaigner/pkg/models"

// CompileConnections turns edges into n8n's name-keyed adjacency. Condition
// nodes get two output slots, positive first; every other node gets one.
// Edges whose target has no name are dropped, and nodes without outgoing edges
// get no entry.
func CompileConnections(
	nodes []models.FlowNode,
	edges []models.FlowEdge,
	names map[string]string,
) map[string]models.NodeConnections {
	types := make(map[string]models.NodeType, len(nodes))
	for _, node := range nodes {
		if _, seen := types[node.ID]; !seen {
			types[node.ID] = node.Type
		}
	}

	var sources []string

	bySource := make(map[string][]models.FlowEdge)
	for _, edge := range edges {
		if _, seen := bySource[edge.Source]; !seen {
			sources = append(sources, edge.Source)
		}

		bySource[edge.Source] = append(bySource[edge.Source], edge)
	}

	connections := make(map[string]models.NodeConnections, len(sources))

	for _, sourceID := range sources {
		sourceName, ok := names[sourceID]
		if !ok {
			continue
		}

		var slots []models.OutputSlot
		if types[sourceID] == models.NodeTypeCondition {
			slots = branchSlots(bySource[sourceID], names)
		} else {
			slots = []models.OutputSlot{targets(bySource[sourceID], names)}
		}

		connections[sourceName] = models.NodeConnections{Main: slots}
	}

	return connections
}

func branchSlots(edges []models.FlowEdge, names map[string]string) []models.OutputSlot {
	positive := make(models.OutputSlot, 0)
	negative := make(models.OutputSlot, 0)

	for _, edge := range edges {
		target, ok := connectionTarget(edge, names)
		if !ok {
			continue
		}

		if edge.IsNegativeBranch() {
			negative = append(negative, target)
		} else {
			positive = append(positive, target)
		}
	}

	return []models.OutputSlot{positive, negative}
}

func targets(edges []models.FlowEdge, names map[string]string) models.OutputSlot {
	slot := make(models.OutputSlot, 0, len(edges))

	for _, edge := range edges {
		if target, ok := connectionTarget(edge, names); ok {
			slot = append(slot, target)
		}
	}

	return slot
}

func connectionTarget(edge models.FlowEdge, names map[string]string) (models.ConnectionTarget, bool) {
	name, ok := names[edge.Target]
	if !ok {
		return models.ConnectionTarget{}, false
	}

	return models.ConnectionTarget{Node: name, Type: models.ConnectionTypeMain, Index: 0}, true
}
