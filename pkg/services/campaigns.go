package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dukex/campaigner/pkg/cache"
	"github.com/dukex/campaigner/pkg/eventbus"
	"github.com/dukex/campaigner/pkg/events"
	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/persistence"
	"github.com/google/uuid"
)

// lockedStatuses are the statuses in which campaign details can no longer change.
var lockedStatuses = []models.CampaignStatus{
	models.CampaignStatusRunning,
	models.CampaignStatusCompleted,
	models.CampaignStatusFailed,
}

type CreateCampaignInput struct {
	SegmentID   string
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// UpdateCampaignInput holds the fields to change; nil fields are kept.
type UpdateCampaignInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// Campaigns manages campaign records on behalf of their owners. Reads are
// served from the cache and every write invalidates it.
type Campaigns struct {
	persistence persistence.Persistence
	remote      RemoteWorkflowClient
	publisher   eventbus.EventPublisher
	cache       *cache.Cache
	logger      *slog.Logger
}

func NewCampaigns(
	p persistence.Persistence,
	remote RemoteWorkflowClient,
	publisher eventbus.EventPublisher,
	c *cache.Cache,
	logger *slog.Logger,
) *Campaigns {
	return &Campaigns{
		persistence: p,
		remote:      remote,
		publisher:   publisher,
		cache:       c,
		logger:      logger.With("module", "campaigns"),
	}
}

// Create registers a draft campaign targeting one of the user's segments.
func (s *Campaigns) Create(ctx context.Context, userID int64, input CreateCampaignInput) (*models.Campaign, error) {
	if userID <= 0 {
		return nil, ErrEmptyUserID
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	if !input.EndDate.After(input.StartDate) {
		return nil, ErrInvalidDateRange
	}

	segment, err := s.persistence.SegmentRepository().GetByID(ctx, input.SegmentID)
	if err != nil {
		return nil, err
	}

	if segment.UserID != userID {
		return nil, fmt.Errorf("segment %s: %w", segment.ID, ErrForbidden)
	}

	campaign := &models.Campaign{
		ID:                 uuid.NewString(),
		UserID:             userID,
		SegmentID:          segment.ID,
		Name:               name,
		Description:        input.Description,
		Status:             models.CampaignStatusDraft,
		StartDate:          input.StartDate.UTC(),
		EndDate:            input.EndDate.UTC(),
		TotalUsersTargeted: segment.TotalRecords,
	}

	if err := s.persistence.CampaignRepository().Save(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	s.cache.InvalidateUserResource(ctx, userID, "campaigns")
	s.cache.Del(ctx, campaignStatsKey(userID))

	s.logger.InfoContext(ctx, "campaign created",
		"campaign_id", campaign.ID,
		"user_id", userID,
		"segment_id", segment.ID,
	)

	return campaign, nil
}

// FindAll returns the user's campaigns, newest first.
func (s *Campaigns) FindAll(ctx context.Context, userID int64) ([]*models.Campaign, error) {
	return cache.Wrap(ctx, s.cache, campaignListKey(userID), campaignListTTL,
		func(ctx context.Context) ([]*models.Campaign, error) {
			return s.persistence.CampaignRepository().ListByUser(ctx, userID)
		},
	)
}

// FindOne returns a campaign owned by the user.
func (s *Campaigns) FindOne(ctx context.Context, id string, userID int64) (*models.Campaign, error) {
	campaign, err := cache.Wrap(ctx, s.cache, campaignKey(id), campaignTTL,
		func(ctx context.Context) (*models.Campaign, error) {
			return s.persistence.CampaignRepository().GetByID(ctx, id)
		},
	)
	if err != nil {
		return nil, err
	}

	if campaign.UserID != userID {
		return nil, fmt.Errorf("campaign %s: %w", id, ErrForbidden)
	}

	return campaign, nil
}

// Update changes campaign details. Campaigns that are running or finished
// cannot be updated.
func (s *Campaigns) Update(ctx context.Context, id string, userID int64, input UpdateCampaignInput) (*models.Campaign, error) {
	campaign, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if slices.Contains(lockedStatuses, campaign.Status) {
		return nil, fmt.Errorf("%w: cannot update campaign in %s status", ErrCampaignLocked, campaign.Status)
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		campaign.Name = strings.TrimSpace(*input.Name)
	}

	if input.Description != nil {
		campaign.Description = *input.Description
	}

	if input.StartDate != nil {
		campaign.StartDate = input.StartDate.UTC()
	}

	if input.EndDate != nil {
		campaign.EndDate = input.EndDate.UTC()
	}

	if (input.StartDate != nil || input.EndDate != nil) && !campaign.EndDate.After(campaign.StartDate) {
		return nil, ErrInvalidDateRange
	}

	if err := s.persistence.CampaignRepository().Save(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	invalidateCampaign(ctx, s.cache, campaign.ID, userID)

	return campaign, nil
}

// SaveFlow stores the raw flow editor document after checking it against the
// flow schema. Structural checks happen at deploy time.
func (s *Campaigns) SaveFlow(ctx context.Context, id string, userID int64, raw []byte) (*models.Campaign, error) {
	if err := models.ValidateFlowDocument(raw); err != nil {
		return nil, err
	}

	var flow models.FlowGraph
	if err := json.Unmarshal(raw, &flow); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidFlowDocument, err)
	}

	campaign, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	campaign.FlowData = &flow

	if err := s.persistence.CampaignRepository().Save(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	invalidateCampaign(ctx, s.cache, campaign.ID, userID)

	return campaign, nil
}

// GetFlow returns the stored flow, or an empty graph when none was saved.
func (s *Campaigns) GetFlow(ctx context.Context, id string, userID int64) (*models.FlowGraph, error) {
	campaign, err := s.FindOne(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if campaign.FlowData == nil {
		return &models.FlowGraph{Nodes: []models.FlowNode{}, Edges: []models.FlowEdge{}}, nil
	}

	return campaign.FlowData, nil
}

// Delete removes a campaign that is not running. Its remote workflow is
// deleted on a best-effort basis.
func (s *Campaigns) Delete(ctx context.Context, id string, userID int64) error {
	campaign, err := s.load(ctx, id, userID)
	if err != nil {
		return err
	}

	if campaign.Status == models.CampaignStatusRunning {
		return ErrCampaignRunning
	}

	if err := s.persistence.CampaignRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	if campaign.IsDeployed() {
		if err := s.remote.DeleteWorkflow(ctx, campaign.RemoteWorkflowID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete remote workflow",
				"campaign_id", campaign.ID,
				"workflow_id", campaign.RemoteWorkflowID,
				"error", err,
			)
		}
	}

	invalidateCampaign(ctx, s.cache, campaign.ID, userID)
	publish(ctx, s.publisher, s.logger, campaign.ID, events.NewCampaignDeleted(campaign))

	s.logger.InfoContext(ctx, "campaign deleted", "campaign_id", campaign.ID, "user_id", userID)

	return nil
}

// Statistics aggregates the user's campaigns.
func (s *Campaigns) Statistics(ctx context.Context, userID int64) (*models.CampaignStatistics, error) {
	return cache.Wrap(ctx, s.cache, campaignStatsKey(userID), campaignStatsTTL,
		func(ctx context.Context) (*models.CampaignStatistics, error) {
			campaigns, err := s.persistence.CampaignRepository().ListByUser(ctx, userID)
			if err != nil {
				return nil, err
			}

			stats := &models.CampaignStatistics{TotalCampaigns: len(campaigns)}

			for _, campaign := range campaigns {
				switch campaign.Status {
				case models.CampaignStatusRunning:
					stats.ActiveCampaigns++
				case models.CampaignStatusScheduled:
					stats.ScheduledCampaigns++
				case models.CampaignStatusCompleted:
					stats.CompletedCampaigns++
				}

				stats.TotalSent += campaign.TotalSent
				stats.TotalFailed += campaign.TotalFailed
				stats.TotalUsersTargeted += campaign.TotalUsersTargeted
			}

			return stats, nil
		},
	)
}

// load reads a campaign from storage, bypassing the cache, for a write.
func (s *Campaigns) load(ctx context.Context, id string, userID int64) (*models.Campaign, error) {
	campaign, err := s.persistence.CampaignRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if campaign.UserID != userID {
		return nil, fmt.Errorf("campaign %s: %w", id, ErrForbidden)
	}

	return campaign, nil
}
