package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/adapter"
	"decor-studio/internal/domain/ports/repository"
	"decor-studio/internal/infra/metrics"
)

// DonePublisher announces terminal transitions so pollers can wake early.
type DonePublisher interface {
	PublishDone(ctx context.Context, jobID, status string) error
}

// Processor owns the processing half of the job lifecycle: it takes a
// pending job, runs the compute call under a deadline, and writes the
// terminal status. Intake is idempotent per job id.
type Processor struct {
	jobs     repository.JobRepository
	compute  adapter.ComputeAdapter
	events   DonePublisher
	pool     *Pool
	leaseTTL time.Duration
	timeout  time.Duration
	log      *zerolog.Logger
}

func NewProcessor(
	jobs repository.JobRepository,
	compute adapter.ComputeAdapter,
	events DonePublisher,
	pool *Pool,
	leaseTTL time.Duration,
	timeout time.Duration,
	logger *zerolog.Logger,
) *Processor {
	procLog := logger.With().Str("component", "Processor").Logger()
	return &Processor{
		jobs:     jobs,
		compute:  compute,
		events:   events,
		pool:     pool,
		leaseTTL: leaseTTL,
		timeout:  timeout,
		log:      &procLog,
	}
}

// Intake claims a pending job and hands it to the pool. A second intake for
// the same id observes the job already processing and returns
// domain.ErrJobAlreadyTaken without touching it.
func (p *Processor) Intake(ctx context.Context, jobID string) error {
	job, err := p.jobs.MarkProcessing(ctx, jobID, time.Now().Add(p.leaseTTL))
	if err != nil {
		return err
	}
	return p.pool.Submit(func(ctx context.Context) error {
		p.process(ctx, job)
		return nil
	})
}

func (p *Processor) process(ctx context.Context, job *model.Job) {
	log := p.log.With().Str("job_id", job.ID).Str("job_type", string(job.Type)).Logger()
	log.Info().Msg("processing job")

	stopLease := p.keepLease(ctx, job.ID)
	defer stopLease()

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	result, err := p.compute.Run(callCtx, job.Type, &job.Payload)
	latency := time.Since(start)
	metrics.ObserveComputeCall(string(job.Type), int(latency/time.Millisecond), err == nil)

	// The terminal write uses a fresh context so a cancelled caller cannot
	// strand the job in processing for the reaper to clean up.
	finalCtx, finalCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer finalCancel()

	status := model.JobStatusCompleted
	if err != nil {
		status = model.JobStatusFailed
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("compute timeout after %s", p.timeout)
		}
		log.Error().Err(err).Msg("job failed")
		if ferr := p.jobs.Fail(finalCtx, job.ID, msg); ferr != nil {
			log.Error().Err(ferr).Msg("could not record failure")
			return
		}
	} else {
		if cerr := p.jobs.Complete(finalCtx, job.ID, result); cerr != nil {
			log.Error().Err(cerr).Msg("could not record completion")
			return
		}
	}

	metrics.IncJobFinished(string(job.Type), string(status))
	if perr := p.events.PublishDone(finalCtx, job.ID, string(status)); perr != nil {
		log.Warn().Err(perr).Msg("done signal not published")
	}
	log.Info().Str("status", string(status)).Dur("duration_ms", latency).Msg("job finished")
}

// keepLease renews the lease at half its TTL until the returned stop func runs.
func (p *Processor) keepLease(ctx context.Context, jobID string) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(p.leaseTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.jobs.ExtendLease(ctx, jobID, time.Now().Add(p.leaseTTL)); err != nil {
					p.log.Warn().Err(err).Str("job_id", jobID).Msg("lease renewal failed")
				}
			}
		}
	}()
	return func() { close(done) }
}
