package web

import (
	"encoding/json"
	"time"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/services"
)

// CreateCampaignRequest represents the request body for creating a campaign.
type CreateCampaignRequest struct {
	Name        string    `json:"name"                  validate:"required,max=255"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	SegmentID   string    `json:"segmentId"             validate:"required"`
	StartDate   time.Time `json:"startDate"             validate:"required"`
	EndDate     time.Time `json:"endDate"               validate:"required,gtfield=StartDate"`
}

func (r CreateCampaignRequest) input() services.CreateCampaignInput {
	return services.CreateCampaignInput{
		SegmentID:   r.SegmentID,
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

// UpdateCampaignRequest represents the request body for updating a campaign.
// All fields are optional to support partial updates.
type UpdateCampaignRequest struct {
	Name        *string    `json:"name,omitempty"        validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

func (r UpdateCampaignRequest) input() services.UpdateCampaignInput {
	return services.UpdateCampaignInput{
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

type UpdateStatusRequest struct {
	Status models.CampaignStatus `json:"status" validate:"required,oneof=draft scheduled running paused completed failed"`
}

// SaveFlowRequest carries the flow editor document untouched; it is checked
// against the flow schema by the campaign service.
type SaveFlowRequest struct {
	FlowData json.RawMessage `json:"flowData" validate:"required"`
}

type FlowResponse struct {
	FlowData *models.FlowGraph `json:"flowData"`
}

// TriggerRequest is optional; its payload is merged into the webhook body.
type TriggerRequest struct {
	Payload map[string]any `json:"payload,omitempty"`
}

// CreateSegmentRequest registers a recipient list already uploaded to S3.
type CreateSegmentRequest struct {
	Name         string `json:"name"         validate:"required,max=255"`
	S3URL        string `json:"s3Url"        validate:"required,url"`
	S3Key        string `json:"s3Key"        validate:"required"`
	FileName     string `json:"fileName"     validate:"required"`
	FileSize     int64  `json:"fileSize"     validate:"min=0"`
	TotalRecords int    `json:"totalRecords" validate:"min=0"`
}

func (r CreateSegmentRequest) input() services.CreateSegmentInput {
	return services.CreateSegmentInput{
		Name:         r.Name,
		S3URL:        r.S3URL,
		S3Key:        r.S3Key,
		FileName:     r.FileName,
		FileSize:     r.FileSize,
		TotalRecords: r.TotalRecords,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}
