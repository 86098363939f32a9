package file

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/persistence"
)

// CampaignRepository handles campaign-related file operations.
type CampaignRepository struct {
	dir string
	mu  sync.RWMutex
}

// NewCampaignRepository creates a new campaign repository.
func NewCampaignRepository(root string) *CampaignRepository {
	return &CampaignRepository{dir: path.Join(root, "campaigns")}
}

// GetByID retrieves a campaign by its ID.
func (cr *CampaignRepository) GetByID(_ context.Context, id string) (*models.Campaign, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	return cr.load(id)
}

// ListByUser returns the user's campaigns, newest first.
func (cr *CampaignRepository) ListByUser(_ context.Context, userID int64) ([]*models.Campaign, error) {
	campaigns, err := cr.all(func(c *models.Campaign) bool { return c.UserID == userID })
	if err != nil {
		return nil, err
	}

	sort.SliceStable(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})

	return campaigns, nil
}

// ListByStatus returns campaigns in the given status, oldest first.
func (cr *CampaignRepository) ListByStatus(_ context.Context, status models.CampaignStatus) ([]*models.Campaign, error) {
	campaigns, err := cr.all(func(c *models.Campaign) bool { return c.Status == status })
	if err != nil {
		return nil, err
	}

	sort.SliceStable(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.Before(campaigns[j].CreatedAt)
	})

	return campaigns, nil
}

// Save writes the campaign to the file system.
func (cr *CampaignRepository) Save(_ context.Context, campaign *models.Campaign) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	now := time.Now().UTC()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}

	campaign.UpdatedAt = now

	if err := writeRecord(cr.dir, campaign.ID, campaign); err != nil {
		return persistence.NewCampaignError("Save", campaign.ID, err)
	}

	return nil
}

// Delete removes a campaign by its ID. Deleting a missing campaign is not an error.
func (cr *CampaignRepository) Delete(_ context.Context, id string) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	err := os.Remove(path.Join(cr.dir, id+".json"))
	if err != nil && !os.IsNotExist(err) {
		return persistence.NewCampaignError("Delete", id, err)
	}

	return nil
}

func (cr *CampaignRepository) load(id string) (*models.Campaign, error) {
	var campaign models.Campaign

	found, err := readRecord(cr.dir, id, &campaign)
	if err != nil {
		return nil, persistence.NewCampaignError("GetByID", id, err)
	}

	if !found {
		return nil, persistence.NewCampaignError("GetByID", id, persistence.ErrCampaignNotFound)
	}

	return &campaign, nil
}

func (cr *CampaignRepository) all(keep func(*models.Campaign) bool) ([]*models.Campaign, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	ids, err := recordIDs(cr.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaign files: %w", err)
	}

	campaigns := make([]*models.Campaign, 0, len(ids))

	for _, id := range ids {
		campaign, err := cr.load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load campaign %s: %w", id, err)
		}

		if keep(campaign) {
			campaigns = append(campaigns, campaign)
		}
	}

	return campaigns, nil
}
