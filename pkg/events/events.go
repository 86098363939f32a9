// Package events defines the campaign lifecycle notifications published on the event bus.
package events

import (
	"time"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every campaign event.
const Topic = "campaigner.campaigns"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	CampaignStatusChangedEvent EventType = "campaign.status_changed"
	CampaignDeployedEvent      EventType = "campaign.deployed"
	CampaignTriggeredEvent     EventType = "campaign.triggered"
	CampaignDeletedEvent       EventType = "campaign.deleted"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	CampaignID string    `json:"campaign_id"`
	UserID     int64     `json:"user_id"`
}

func newBase(eventType EventType, campaign *models.Campaign) BaseEvent {
	return BaseEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		CampaignID: campaign.ID,
		UserID:     campaign.UserID,
	}
}

// CampaignStatusChanged is published after a transition was persisted.
type CampaignStatusChanged struct {
	BaseEvent

	From models.CampaignStatus `json:"from"`
	To   models.CampaignStatus `json:"to"`
}

func (CampaignStatusChanged) GetType() EventType {
	return CampaignStatusChangedEvent
}

func NewCampaignStatusChanged(campaign *models.Campaign, from models.CampaignStatus) CampaignStatusChanged {
	return CampaignStatusChanged{
		BaseEvent: newBase(CampaignStatusChangedEvent, campaign),
		From:      from,
		To:        campaign.Status,
	}
}

// CampaignDeployed is published after a flow was pushed to n8n.
type CampaignDeployed struct {
	BaseEvent

	WorkflowID  string `json:"workflow_id"`
	FlowVersion int    `json:"flow_version"`
	WebhookURL  string `json:"webhook_url"`
	Activated   bool   `json:"activated"`
}

func (CampaignDeployed) GetType() EventType {
	return CampaignDeployedEvent
}

func NewCampaignDeployed(campaign *models.Campaign, webhookURL string, activated bool) CampaignDeployed {
	return CampaignDeployed{
		BaseEvent:   newBase(CampaignDeployedEvent, campaign),
		WorkflowID:  campaign.RemoteWorkflowID,
		FlowVersion: campaign.FlowVersion,
		WebhookURL:  webhookURL,
		Activated:   activated,
	}
}

// CampaignTriggered is published after a webhook invocation was accepted.
type CampaignTriggered struct {
	BaseEvent

	WorkflowID     string `json:"workflow_id"`
	ExecutionCount int    `json:"execution_count"`
	Background     bool   `json:"background"`
}

func (CampaignTriggered) GetType() EventType {
	return CampaignTriggeredEvent
}

func NewCampaignTriggered(campaign *models.Campaign, background bool) CampaignTriggered {
	return CampaignTriggered{
		BaseEvent:      newBase(CampaignTriggeredEvent, campaign),
		WorkflowID:     campaign.RemoteWorkflowID,
		ExecutionCount: campaign.ExecutionCount,
		Background:     background,
	}
}

// CampaignDeleted is published after a campaign was removed.
type CampaignDeleted struct {
	BaseEvent

	WorkflowID string `json:"workflow_id,omitempty"`
}

func (CampaignDeleted) GetType() EventType {
	return CampaignDeletedEvent
}

func NewCampaignDeleted(campaign *models.Campaign) CampaignDeleted {
	return CampaignDeleted{
		BaseEvent:  newBase(CampaignDeletedEvent, campaign),
		WorkflowID: campaign.RemoteWorkflowID,
	}
}
