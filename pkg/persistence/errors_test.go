package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/campaigner/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		campaignErr := persistence.NewCampaignError("GetByID", "campaign-123", persistence.ErrCampaignNotFound)
		segmentErr := persistence.NewSegmentError("GetByID", "segment-456", persistence.ErrSegmentNotFound)

		assert.True(t, persistence.IsCampaignNotFound(campaignErr))
		assert.False(t, persistence.IsSegmentNotFound(campaignErr))
		assert.True(t, persistence.IsSegmentNotFound(segmentErr))
		assert.True(t, errors.Is(fmt.Errorf("lookup: %w", campaignErr), persistence.ErrCampaignNotFound))
	})

	t.Run("campaign error contains context", func(t *testing.T) {
		err := persistence.NewCampaignError("Delete", "campaign-123", persistence.ErrCampaignNotFound)

		assert.Contains(t, err.Error(), "Delete")
		assert.Contains(t, err.Error(), "campaign-123")
		assert.Contains(t, err.Error(), "campaign not found")
	})

	t.Run("segment error contains context", func(t *testing.T) {
		err := persistence.NewSegmentError("Save", "segment-1", errors.New("disk full"))

		assert.Equal(t, "Save operation failed for segment segment-1: disk full", err.Error())
	})
}
