package services

import (
	"context"
	"log/slog"

	"github.com/dukex/campaigner/pkg/cache"
	"github.com/dukex/campaigner/pkg/eventbus"
	"github.com/dukex/campaigner/pkg/events"
)

// RegisterCacheInvalidation subscribes to campaign events so that changes
// made by other processes, such as the scheduler, drop the cached views.
func RegisterCacheInvalidation(subscriber eventbus.EventSubscriber, c *cache.Cache, logger *slog.Logger) error {
	handler := func(ctx context.Context, event any) error {
		base, ok := baseEvent(event)
		if !ok {
			return nil
		}

		logger.DebugContext(ctx, "invalidating campaign cache",
			"event_type", base.Type,
			"campaign_id", base.CampaignID,
		)
		invalidateCampaign(ctx, c, base.CampaignID, base.UserID)

		return nil
	}

	return eventbus.HandleAll(subscriber, handler,
		events.CampaignStatusChangedEvent,
		events.CampaignDeployedEvent,
		events.CampaignTriggeredEvent,
		events.CampaignDeletedEvent,
	)
}

func baseEvent(event any) (events.BaseEvent, bool) {
	switch e := event.(type) {
	case *events.CampaignStatusChanged:
		return e.BaseEvent, true
	case *events.CampaignDeployed:
		return e.BaseEvent, true
	case *events.CampaignTriggered:
		return e.BaseEvent, true
	case *events.CampaignDeleted:
		return e.BaseEvent, true
	default:
		return events.BaseEvent{}, false
	}
}
