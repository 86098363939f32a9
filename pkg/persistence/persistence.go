// Package persistence provides the storage abstraction for campaigns and segments.
package persistence

import (
	"context"

	"github.com/dukex/campaigner/pkg/models"
)

// Persistence groups the repositories of one storage backend.
type Persistence interface {
	CampaignRepository() CampaignRepository
	SegmentRepository() SegmentRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// CampaignRepository stores campaigns. Reads of a missing id fail with
// ErrCampaignNotFound.
type CampaignRepository interface {
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	// ListByUser returns the user's campaigns, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*models.Campaign, error)
	// ListByStatus returns campaigns of every user in the given status, oldest first.
	ListByStatus(ctx context.Context, status models.CampaignStatus) ([]*models.Campaign, error)
	// Save inserts or replaces the campaign, stamping CreatedAt and UpdatedAt.
	Save(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id string) error
}

// SegmentRepository stores recipient segments. Reads of a missing id fail with
// ErrSegmentNotFound.
type SegmentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Segment, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Segment, error)
	Save(ctx context.Context, segment *models.Segment) error
}
