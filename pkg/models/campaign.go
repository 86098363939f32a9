package models

import (
	"slices"
	"time"
)

// CampaignStatus is the authoring lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusRunning   CampaignStatus = "running"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusFailed    CampaignStatus = "failed"
)

// CampaignStatuses lists every status in lifecycle order.
var CampaignStatuses = []CampaignStatus{
	CampaignStatusDraft,
	CampaignStatusScheduled,
	CampaignStatusRunning,
	CampaignStatusPaused,
	CampaignStatusCompleted,
	CampaignStatusFailed,
}

// Valid reports whether s is a known status.
func (s CampaignStatus) Valid() bool {
	return slices.Contains(CampaignStatuses, s)
}

// ExecutionStatus is the execution-facing state mirrored from the campaign status.
type ExecutionStatus string

const (
	ExecutionStatusActive    ExecutionStatus = "active"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusPaused    ExecutionStatus = "paused"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// Campaign is a marketing campaign targeting one segment through an automation flow.
type Campaign struct {
	ID                 string          `json:"id"`
	UserID             int64           `json:"userId"`
	SegmentID          string          `json:"segmentId"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Status             CampaignStatus  `json:"status"`
	StartDate          time.Time       `json:"startDate"`
	EndDate            time.Time       `json:"endDate"`
	TotalUsersTargeted int             `json:"totalUsersTargeted"`
	TotalSent          int             `json:"totalSent"`
	TotalFailed        int             `json:"totalFailed"`
	FlowData           *FlowGraph      `json:"flowData,omitempty"`
	RemoteWorkflowID   string          `json:"n8nWorkflowId,omitempty"`
	RemoteWorkflowURL  string          `json:"n8nWorkflowUrl,omitempty"`
	FlowVersion        int             `json:"flowVersion"`
	FlowUpdatedAt      *time.Time      `json:"flowUpdatedAt,omitempty"`
	ExecutionStatus    ExecutionStatus `json:"executionStatus,omitempty"`
	ExecutionCount     int             `json:"executionCount"`
	LastExecutedAt     *time.Time      `json:"lastExecutedAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// IsDeployed reports whether the flow has been pushed to n8n at least once.
func (c *Campaign) IsDeployed() bool {
	return c.RemoteWorkflowID != ""
}

// HasFlow reports whether the campaign carries a non-empty flow graph.
func (c *Campaign) HasFlow() bool {
	return !c.FlowData.IsEmpty()
}

// Segment is an uploaded list of recipients.
type Segment struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"userId"`
	Name         string    `json:"name"`
	S3URL        string    `json:"s3Url"`
	S3Key        string    `json:"s3Key"`
	FileName     string    `json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	TotalRecords int       `json:"totalRecords"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CampaignStatistics aggregates the campaigns of one user.
type CampaignStatistics struct {
	TotalCampaigns     int `json:"totalCampaigns"`
	ActiveCampaigns    int `json:"activeCampaigns"`
	ScheduledCampaigns int `json:"scheduledCampaigns"`
	CompletedCampaigns int `json:"completedCampaigns"`
	TotalSent          int `json:"totalSent"`
	TotalFailed        int `json:"totalFailed"`
	TotalUsersTargeted int `json:"totalUsersTargeted"`
}
