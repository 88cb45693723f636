// Package poller implements the client half of the job lifecycle: repeated
// status reads until the job turns terminal, then settlement of the side
// effects for completed jobs.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"decor-studio/internal/domain"
	"decor-studio/internal/domain/model"
	"decor-studio/internal/usecase"
)

// JobFetcher reads the current state of a job.
type JobFetcher interface {
	Get(ctx context.Context, jobID string) (*model.Job, error)
}

// Waiter blocks until a done signal for the job arrives or the context ends.
// It is an optional accelerator; the poller never depends on it firing.
type Waiter interface {
	WaitDone(ctx context.Context, jobID string) (string, error)
}

// Result is the terminal outcome of a poll: the completed job and its
// settled entry.
type Result struct {
	Job   *model.Job
	Entry *model.SpaceResult
}

type Poller struct {
	jobs     JobFetcher
	settler  usecase.CompletionUseCase
	waiter   Waiter
	interval time.Duration
	attempts int
	log      *zerolog.Logger
}

func New(jobs JobFetcher, settler usecase.CompletionUseCase, waiter Waiter, interval time.Duration, maxAttempts int, logger *zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 120
	}
	return &Poller{
		jobs:     jobs,
		settler:  settler,
		waiter:   waiter,
		interval: interval,
		attempts: maxAttempts,
		log:      logger,
	}
}

// Poll reads the job until it is terminal or attempts run out.
// Completed jobs are settled before the result is returned. Failed jobs
// surface as *domain.JobFailedError and are never retried; the failure is
// already permanent on the server. Exhausted attempts return ErrPollTimeout
// while the job may still finish server-side.
func (p *Poller) Poll(ctx context.Context, jobID string) (*Result, error) {
	for attempt := 0; attempt < p.attempts; attempt++ {
		job, err := p.jobs.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch job.Status {
		case model.JobStatusCompleted:
			entry, err := p.settler.Settle(ctx, job)
			if err != nil {
				return nil, err
			}
			return &Result{Job: job, Entry: entry}, nil
		case model.JobStatusFailed:
			return nil, &domain.JobFailedError{JobID: job.ID, Message: job.ErrorMessage}
		}

		if err := p.wait(ctx, jobID); err != nil {
			return nil, err
		}
	}
	p.log.Warn().Str("job_id", jobID).Int("attempts", p.attempts).Msg("poll attempts exhausted")
	return nil, domain.ErrPollTimeout
}

// wait sleeps one interval, or less when the waiter delivers a done signal
// first. A waiter error just falls back to the plain tick.
func (p *Poller) wait(ctx context.Context, jobID string) error {
	if p.waiter != nil {
		wctx, cancel := context.WithTimeout(ctx, p.interval)
		defer cancel()
		_, _ = p.waiter.WaitDone(wctx, jobID)
		return ctx.Err()
	}
	select {
	case <-time.After(p.interval):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
