package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/persistence"
	"github.com/dukex/campaigner/pkg/services"
	"github.com/robfig/cron/v3"
)

const DefaultSpec = "@every 1m"

type statusUpdater interface {
	UpdateStatus(ctx context.Context, id string, to models.CampaignStatus) (*services.TransitionResult, error)
}

// sweep moves every campaign in status from to status to once due reports
// true for it.
type sweep struct {
	from models.CampaignStatus
	to   models.CampaignStatus
	due  func(campaign *models.Campaign, now time.Time) bool
}

var sweeps = []sweep{
	{
		from: models.CampaignStatusScheduled,
		to:   models.CampaignStatusRunning,
		due: func(campaign *models.Campaign, now time.Time) bool {
			return !campaign.StartDate.After(now)
		},
	},
	{
		from: models.CampaignStatusRunning,
		to:   models.CampaignStatusCompleted,
		due: func(campaign *models.Campaign, now time.Time) bool {
			return !campaign.EndDate.After(now)
		},
	},
}

// TickResult counts the transitions applied by one tick.
type TickResult struct {
	Started   int
	Completed int
	Failed    int
}

// Scheduler starts scheduled campaigns when their start date passes and
// completes running campaigns when their end date passes.
type Scheduler struct {
	campaigns persistence.CampaignRepository
	lifecycle statusUpdater
	spec      string
	logger    *slog.Logger
	now       func() time.Time
}

func NewScheduler(p persistence.Persistence, lifecycle statusUpdater, spec string, logger *slog.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}

	return &Scheduler{
		campaigns: p.CampaignRepository(),
		lifecycle: lifecycle,
		spec:      spec,
		logger:    logger.With("module", "scheduler"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks the cron spec.
func (s *Scheduler) Validate() error {
	if _, err := cron.ParseStandard(s.spec); err != nil {
		return fmt.Errorf("invalid scheduler spec %q: %w", s.spec, err)
	}

	return nil
}

// Start runs a tick on every cron firing until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Validate(); err != nil {
		return err
	}

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	id, err := c.AddFunc(s.spec, func() {
		s.Tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add scheduler job: %w", err)
	}

	s.logger.InfoContext(ctx, "Starting scheduler", "spec", s.spec, "job_id", id)
	c.Start()

	<-ctx.Done()

	s.logger.Info("Stopping scheduler")
	<-c.Stop().Done()

	return nil
}

// Tick applies every due transition once. A failed campaign is logged and
// retried on the next tick.
func (s *Scheduler) Tick(ctx context.Context) TickResult {
	var result TickResult

	now := s.now()

	for _, sw := range sweeps {
		campaigns, err := s.campaigns.ListByStatus(ctx, sw.from)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to list campaigns", "status", sw.from, "error", err)

			continue
		}

		for _, campaign := range campaigns {
			if !sw.due(campaign, now) {
				continue
			}

			transition, err := s.lifecycle.UpdateStatus(ctx, campaign.ID, sw.to)
			if err != nil {
				s.logger.ErrorContext(ctx, "Failed to transition campaign",
					"campaign_id", campaign.ID,
					"from", sw.from,
					"to", sw.to,
					"error", err,
				)

				result.Failed++

				continue
			}

			for _, effect := range transition.FailedSideEffects() {
				s.logger.WarnContext(ctx, "Campaign side effect failed",
					"campaign_id", campaign.ID,
					"action", effect.Action,
					"error", effect.Err,
				)
			}

			if sw.to == models.CampaignStatusRunning {
				result.Started++
			} else {
				result.Completed++
			}
		}
	}

	if result != (TickResult{}) {
		s.logger.InfoContext(ctx, "Scheduler tick applied transitions",
			"started", result.Started,
			"completed", result.Completed,
			"failed", result.Failed,
		)
	}

	return result
}
