package services

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/campaigner/pkg/cache"
	"github.com/dukex/campaigner/pkg/channels/gochannel"
	"github.com/dukex/campaigner/pkg/eventbus"
	"github.com/dukex/campaigner/pkg/events"
	"github.com/dukex/campaigner/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCacheInvalidation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub, sub := gochannel.CreateTestChannel(watermill.NopLogger{})
	bus := eventbus.NewWatermillEventBus(pub, sub)
	defer bus.Close()

	c := cache.New(cache.NewMemoryStore(), discardLogger())
	require.NoError(t, RegisterCacheInvalidation(bus, c, discardLogger()))
	require.NoError(t, bus.Subscribe(ctx))

	c.Set(ctx, campaignKey("c1"), "stale", time.Minute)
	c.Set(ctx, campaignListKey(9), "stale", time.Minute)
	c.Set(ctx, campaignStatsKey(9), "stale", time.Minute)
	c.Set(ctx, campaignKey("c2"), "fresh", time.Minute)

	campaign := &models.Campaign{ID: "c1", UserID: 9, Status: models.CampaignStatusRunning}
	require.NoError(t, bus.Publish(ctx, campaign.ID, events.NewCampaignStatusChanged(campaign, models.CampaignStatusScheduled)))

	var v string

	assert.Eventually(t, func() bool {
		return !c.Get(ctx, campaignKey("c1"), &v)
	}, 2*time.Second, 10*time.Millisecond)

	assert.False(t, c.Get(ctx, campaignListKey(9), &v))
	assert.False(t, c.Get(ctx, campaignStatsKey(9), &v))
	assert.True(t, c.Get(ctx, campaignKey("c2"), &v))
}

func TestBaseEvent(t *testing.T) {
	campaign := &models.Campaign{ID: "c1", UserID: 3}

	for _, event := range []any{
		&events.CampaignStatusChanged{BaseEvent: events.BaseEvent{CampaignID: "c1", UserID: 3}},
		&events.CampaignDeployed{BaseEvent: events.BaseEvent{CampaignID: "c1", UserID: 3}},
		&events.CampaignTriggered{BaseEvent: events.BaseEvent{CampaignID: "c1", UserID: 3}},
		&events.CampaignDeleted{BaseEvent: events.BaseEvent{CampaignID: "c1", UserID: 3}},
	} {
		base, ok := baseEvent(event)

		require.True(t, ok)
		assert.Equal(t, campaign.ID, base.CampaignID)
		assert.Equal(t, campaign.UserID, base.UserID)
	}

	_, ok := baseEvent("something else")
	assert.False(t, ok)
}
