package compiler

import (
	"testing"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestResolveNames_SameLabel(t *testing.T) {
	nodes := []models.FlowNode{
		{ID: "n1", Type: models.NodeTypeSendEmail, Data: models.FlowNodeData{Label: "Email"}},
		{ID: "n2", Type: models.NodeTypeSendEmail, Data: models.FlowNodeData{Label: "Email"}},
		{ID: "n3", Type: models.NodeTypeSendEmail, Data: models.FlowNodeData{Label: "Email"}},
		{ID: "n4", Type: models.NodeTypeSendEmail, Data: models.FlowNodeData{Label: "Email"}},
	}

	names := ResolveNames(nodes)

	assert.Equal(t, map[string]string{
		"n1": "Email",
		"n2": "Email 2",
		"n3": "Email 3",
		"n4": "Email 4",
	}, names)
}

func TestResolveNames_DefaultsPerType(t *testing.T) {
	nodes := []models.FlowNode{
		{ID: "t", Type: models.NodeTypeTrigger},
		{ID: "w1", Type: models.NodeTypeWait},
		{ID: "c", Type: models.NodeTypeCondition},
		{ID: "w2", Type: models.NodeTypeWait},
		{ID: "s", Type: models.NodeTypeGetSegmentData},
		{ID: "p", Type: models.NodeTypeParseCSV},
		{ID: "h", Type: models.NodeTypeHTTPRequest},
		{ID: "code", Type: models.NodeTypeCode},
		{ID: "x", Type: "sendSMS"},
		{ID: "w3", Type: models.NodeTypeWait, Data: models.FlowNodeData{Label: "Wait"}},
	}

	names := ResolveNames(nodes)

	assert.Equal(t, "Webhook Trigger", names["t"])
	assert.Equal(t, "Wait", names["w1"])
	assert.Equal(t, "IF Condition", names["c"])
	assert.Equal(t, "Wait 2", names["w2"])
	assert.Equal(t, "Get Segment Data", names["s"])
	assert.Equal(t, "Parse CSV", names["p"])
	assert.Equal(t, "HTTP Request", names["h"])
	assert.Equal(t, "Code", names["code"])
	assert.Equal(t, "sendSMS", names["x"])
	assert.Equal(t, "Wait 3", names["w3"], "labels and defaults share one counter")
}

func TestResolveNames_Unique(t *testing.T) {
	nodes := make([]models.FlowNode, 0, 50)
	for i := range 50 {
		label := "Step"
		if i%3 == 0 {
			label = ""
		}

		nodes = append(nodes, models.FlowNode{
			ID:   string(rune('A' + i)),
			Type: models.NodeTypeCode,
			Data: models.FlowNodeData{Label: label},
		})
	}

	names := ResolveNames(nodes)

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		assert.False(t, seen[name], "duplicate name %q", name)
		seen[name] = true
	}

	assert.Len(t, names, 50)
}

func TestResolveNames_Empty(t *testing.T) {
	assert.Empty(t, ResolveNames(nil))
}
