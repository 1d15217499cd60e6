package scheduler

import (
	"context"
	"fmt"
	"time"

	"audit-log-search/config"
	"audit-log-search/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

// SessionSweepSchedule runs idle console session eviction every minute.
const SessionSweepSchedule = "0 * * * * *"

func newCron(cfg *config.Config, retentionSvc service.RetentionService, sessionSvc service.SessionService) (*cron.Cron, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))

	schedule := cfg.Retention.Schedule
	if schedule != "" && cfg.Retention.Period > 0 {
		_, err := c.AddFunc(schedule, func() {
			if _, err := retentionSvc.PruneExpired(context.Background()); err != nil {
				log.Error().Err(err).Msg("Error during scheduled audit retention")
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
		}
		log.Info().Str("schedule", schedule).Dur("period", cfg.Retention.Period).Msg("Scheduled audit retention job")
	}

	if sessionSvc != nil {
		_, err := c.AddFunc(SessionSweepSchedule, func() {
			sessionSvc.EvictIdle(time.Now())
		})
		if err != nil {
			return nil, fmt.Errorf("add session sweep: %w", err)
		}
	}
	return c, nil
}

func NewScheduler(lc fx.Lifecycle, cfg *config.Config, retentionSvc service.RetentionService, sessionSvc service.SessionService) (*cron.Cron, error) {
	c, err := newCron(cfg, retentionSvc, sessionSvc)
	if err != nil {
		log.Error().Err(err).Msg("Failed to add cron job")
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Int("jobs", len(c.Entries())).Msg("Starting cron scheduler")
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping cron scheduler...")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
				log.Info().Msg("Cron scheduler stopped gracefully.")
				return nil
			case <-ctx.Done():
				log.Error().Msg("Context cancelled while waiting for cron scheduler to stop.")
				return ctx.Err()
			}
		},
	})

	return c, nil
}
