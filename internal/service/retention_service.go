package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"audit-log-search/config"
	"audit-log-search/internal/repository"

	"github.com/rs/zerolog/log"
)

// RetentionService deletes audit records older than the retention period.
type RetentionService interface {
	PruneExpired(ctx context.Context) (int64, error)
}

type retentionService struct {
	pruner  repository.AuditPruner
	period  time.Duration
	now     func() time.Time
	runLock sync.Mutex
}

func NewRetentionService(pruner repository.AuditPruner, cfg *config.Config) RetentionService {
	return &retentionService{
		pruner: pruner,
		period: cfg.Retention.Period,
		now:    time.Now,
	}
}

// PruneExpired is a no-op when no period is configured or a run is already
// in progress.
func (s *retentionService) PruneExpired(ctx context.Context) (int64, error) {
	if s.period <= 0 {
		return 0, nil
	}
	if !s.runLock.TryLock() {
		log.Warn().Msg("Retention run already in progress, skipping.")
		return 0, nil
	}
	defer s.runLock.Unlock()

	cutoff := s.now().UTC().Add(-s.period)
	startTime := time.Now()
	deleted, err := s.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit records before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	log.Info().
		Time("cutoff", cutoff).
		Int64("deleted", deleted).
		Dur("duration", time.Since(startTime)).
		Msg("Finished audit retention run.")
	return deleted, nil
}
