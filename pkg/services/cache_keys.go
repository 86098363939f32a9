package services

import (
	"context"
	"time"

	"github.com/dukex/campaigner/pkg/cache"
)

const (
	campaignListTTL  = 5 * time.Minute
	campaignTTL      = 10 * time.Minute
	campaignStatsTTL = 2 * time.Minute
)

func campaignKey(id string) string {
	return cache.ResourceKey("campaign", id)
}

func campaignListKey(userID int64) string {
	return cache.UserKey(userID, "campaigns")
}

func campaignStatsKey(userID int64) string {
	return cache.UserKey(userID, "campaign", "stats")
}

// invalidateCampaign drops every cached view that may contain the campaign.
func invalidateCampaign(ctx context.Context, c *cache.Cache, campaignID string, userID int64) {
	c.Del(ctx, campaignKey(campaignID), campaignStatsKey(userID))
	c.InvalidateUserResource(ctx, userID, "campaigns")
}
