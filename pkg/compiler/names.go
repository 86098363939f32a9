package compiler

import (
	"strconv"

	"github.com/dukex/campaigner/pkg/models"
)

var defaultNames = map[models.NodeType]string{
	models.NodeTypeTrigger:        "Webhook Trigger",
	models.NodeTypeSendEmail:      "Send Email",
	models.NodeTypeWait:           "Wait",
	models.NodeTypeCondition:      "IF Condition",
	models.NodeTypeGetSegmentData: "Get Segment Data",
	models.NodeTypeParseCSV:       "Parse CSV",
	models.NodeTypeHTTPRequest:    "HTTP Request",
	models.NodeTypeCode:           "Code",
}

// DefaultNodeName returns the display name used for unlabeled nodes of the given type.
func DefaultNodeName(nodeType models.NodeType) string {
	if name, ok := defaultNames[nodeType]; ok {
		return name
	}

	return string(nodeType)
}

func baseName(node models.FlowNode) string {
	if node.Data.Label != "" {
		return node.Data.Label
	}

	return DefaultNodeName(node.Type)
}

// ResolveNames maps node ids to names that are unique within a workflow document.
// n8n addresses nodes by name, so the second and later nodes sharing a base name
// get a " 2", " 3", ... suffix in iteration order.
func ResolveNames(nodes []models.FlowNode) map[string]string {
	counts := make(map[string]int, len(nodes))
	names := make(map[string]string, len(nodes))

	for _, node := range nodes {
		base := baseName(node)
		counts[base]++

		name := base
		if counts[base] > 1 {
			name = base + " " + strconv.Itoa(counts[base])
		}

		names[node.ID] = name
	}

	return names
}
