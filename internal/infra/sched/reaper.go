package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"decor-studio/internal/domain/ports/repository"
	"decor-studio/internal/infra/metrics"
)

// Reaper periodically fails processing jobs whose lease has gone stale. It is
// the backstop for worker death: without it a crashed worker would leave its
// job in processing forever.
type Reaper struct {
	interval time.Duration
	jobs     repository.JobRepository
	events   donePublisher
	log      *zerolog.Logger
}

type donePublisher interface {
	PublishDone(ctx context.Context, jobID, status string) error
}

func NewReaper(interval time.Duration, jobs repository.JobRepository, events donePublisher, logger *zerolog.Logger) *Reaper {
	reapLog := logger.With().Str("component", "Reaper").Logger()
	return &Reaper{
		interval: interval,
		jobs:     jobs,
		events:   events,
		log:      &reapLog,
	}
}

func (r *Reaper) Run(ctx context.Context) error {
	r.log.Info().Msg("starting reaper")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("stopping reaper")
			return ctx.Err()
		case <-ticker.C:
			ids, err := r.jobs.FailStale(ctx, time.Now(), "worker lease expired")
			if err != nil {
				r.log.Error().Err(err).Msg("reaper sweep error")
				continue
			}
			if len(ids) == 0 {
				continue
			}
			metrics.AddJobsReaped(len(ids))
			for _, id := range ids {
				if err := r.events.PublishDone(ctx, id, "failed"); err != nil {
					r.log.Warn().Err(err).Str("job_id", id).Msg("done signal not published")
				}
			}
			r.log.Info().Int("count", len(ids)).Msg("stale jobs failed")
		}
	}
}
