// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/google/uuid"
)

// CreateTestCampaign creates a draft campaign with default values that can be overridden.
func CreateTestCampaign(overrides ...func(*models.Campaign)) *models.Campaign {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	campaign := &models.Campaign{
		ID:        uuid.New().String(),
		UserID:    1,
		SegmentID: "seg-1",
		Name:      "Test Campaign",
		Status:    models.CampaignStatusDraft,
		StartDate: start,
		EndDate:   start.Add(14 * 24 * time.Hour),
	}

	for _, override := range overrides {
		override(campaign)
	}

	return campaign
}

// WithCampaignID sets the campaign ID.
func WithCampaignID(id string) func(*models.Campaign) {
	return func(c *models.Campaign) {
		c.ID = id
	}
}

// WithStatus sets the campaign status.
func WithStatus(status models.CampaignStatus) func(*models.Campaign) {
	return func(c *models.Campaign) {
		c.Status = status
	}
}

// WithDates sets the campaign start and end dates.
func WithDates(start, end time.Time) func(*models.Campaign) {
	return func(c *models.Campaign) {
		c.StartDate = start
		c.EndDate = end
	}
}

// WithRemoteWorkflow marks the campaign as deployed to the given workflow.
func WithRemoteWorkflow(workflowID string) func(*models.Campaign) {
	return func(c *models.Campaign) {
		c.RemoteWorkflowID = workflowID
		c.RemoteWorkflowURL = "http://localhost:5678/workflow/" + workflowID
		c.FlowVersion = 1
	}
}

// WithFlow sets the campaign flow graph.
func WithFlow(graph *models.FlowGraph) func(*models.Campaign) {
	return func(c *models.Campaign) {
		c.FlowData = graph
	}
}

// CreateTestSegment creates a segment owned by userID.
func CreateTestSegment(id string, userID int64, totalRecords int) *models.Segment {
	return &models.Segment{
		ID:           id,
		UserID:       userID,
		Name:         "Test Segment",
		S3URL:        "https://bucket.s3.amazonaws.com/" + id + ".csv",
		S3Key:        id + ".csv",
		FileName:     id + ".csv",
		TotalRecords: totalRecords,
		Status:       "active",
	}
}

// CreateTestNode creates a flow node of the given type.
func CreateTestNode(id string, nodeType models.NodeType, label string, properties map[string]any) models.FlowNode {
	return models.FlowNode{
		ID:   id,
		Type: nodeType,
		Data: models.FlowNodeData{Label: label, Properties: properties},
	}
}

// CreateTestEdge connects source to target.
func CreateTestEdge(source, target string) models.FlowEdge {
	return models.FlowEdge{ID: source + "-" + target, Source: source, Target: target}
}

// CreateTestFlow creates a trigger followed by a five minute wait.
func CreateTestFlow() *models.FlowGraph {
	return &models.FlowGraph{
		Nodes: []models.FlowNode{
			CreateTestNode("trigger-1", models.NodeTypeTrigger, "Start", nil),
			CreateTestNode("wait-1", models.NodeTypeWait, "Wait 5", map[string]any{"amount": "5", "unit": "minutes"}),
		},
		Edges: []models.FlowEdge{CreateTestEdge("trigger-1", "wait-1")},
	}
}
