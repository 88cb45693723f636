package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"decor-studio/internal/config"
	"decor-studio/internal/domain"
	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/adapter"
	"decor-studio/internal/domain/ports/repository"
	"decor-studio/internal/infra/logging"
	"decor-studio/internal/infra/metrics"
)

// Compile-time check
var _ JobUseCase = (*jobUC)(nil)

// ResultCache fronts the latest persisted entry per (space, user). A miss
// must be cheap; callers fall through to the repository.
type ResultCache interface {
	Get(ctx context.Context, spaceID, userID string) (*model.SpaceResult, bool)
	Store(ctx context.Context, entry *model.SpaceResult) error
}

// SubmitResult is what the gateway hands back: either a pending job, or a
// cached entry when no job was created at all.
type SubmitResult struct {
	Job    *model.Job
	Cached *model.SpaceResult
}

// JobUseCase is the submission gateway plus job reads.
type JobUseCase interface {
	Submit(ctx context.Context, jobType model.JobType, payload model.JobPayload) (*SubmitResult, error)
	Get(ctx context.Context, jobID string) (*model.Job, error)
}

type jobUC struct {
	jobs       repository.JobRepository
	credits    repository.CreditRepository
	results    repository.SpaceResultRepository
	cache      ResultCache
	dispatcher adapter.JobDispatcher
	costs      config.CostConfig
	log        *zerolog.Logger
}

func NewJobUseCase(
	jobs repository.JobRepository,
	credits repository.CreditRepository,
	results repository.SpaceResultRepository,
	cache ResultCache,
	dispatcher adapter.JobDispatcher,
	costs config.CostConfig,
	logger *zerolog.Logger,
) *jobUC {
	return &jobUC{
		jobs:       jobs,
		credits:    credits,
		results:    results,
		cache:      cache,
		dispatcher: dispatcher,
		costs:      costs,
		log:        logger,
	}
}

func costFor(costs config.CostConfig, jobType model.JobType) int64 {
	switch jobType {
	case model.JobTypeImageGeneration:
		return costs.ImageGeneration
	case model.JobTypeProductSearch:
		return costs.ProductSearch
	default:
		return costs.AutoSelect
	}
}

// Submit validates, pre-checks credits, and creates a pending job. For
// product searches a prior entry for the same (space, user) short-circuits
// the whole flow without creating a job.
func (u *jobUC) Submit(ctx context.Context, jobType model.JobType, payload model.JobPayload) (*SubmitResult, error) {
	defer logging.TraceDuration(u.log, "JobUC.Submit")()

	if err := payload.Validate(); err != nil {
		return nil, err
	}

	// The balance is checked before any job row exists so a broke user never
	// leaves a pending job behind. The authoritative deduction still happens
	// at completion time.
	if cost := costFor(u.costs, jobType); cost > 0 {
		balance, err := u.credits.Balance(ctx, repository.NoTX, payload.UserID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if balance < cost {
			metrics.IncCreditBlocked()
			return nil, domain.ErrInsufficientCredits
		}
	}

	if jobType == model.JobTypeProductSearch {
		if entry, ok := u.lookupCached(ctx, payload.SpaceID, payload.UserID); ok {
			return &SubmitResult{Cached: entry}, nil
		}
	}

	job, err := model.NewJob(ulid.Make().String(), jobType, payload)
	if err != nil {
		return nil, err
	}
	if err := u.jobs.Create(ctx, repository.NoTX, job); err != nil {
		return nil, err
	}
	metrics.IncJobSubmitted(string(jobType))

	if err := u.dispatcher.Dispatch(ctx, job.ID); err != nil && !errors.Is(err, domain.ErrJobAlreadyTaken) {
		u.log.Error().Err(err).Str("job_id", job.ID).Msg("dispatch failed")
		if ferr := u.jobs.FailDispatch(ctx, job.ID, "dispatch failed"); ferr != nil {
			u.log.Error().Err(ferr).Str("job_id", job.ID).Msg("could not record dispatch failure")
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}

	return &SubmitResult{Job: job}, nil
}

// lookupCached is the read-through path: redis first, postgres on miss. Only
// entries that actually carry products count; an image-only entry must not
// suppress a fresh search.
func (u *jobUC) lookupCached(ctx context.Context, spaceID, userID string) (*model.SpaceResult, bool) {
	if entry, ok := u.cache.Get(ctx, spaceID, userID); ok && len(entry.Products) > 0 {
		metrics.IncResultCache("hit")
		return entry, true
	}
	entry, err := u.results.Latest(ctx, repository.NoTX, spaceID, userID)
	if err != nil || len(entry.Products) == 0 {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			u.log.Warn().Err(err).Str("space_id", spaceID).Msg("latest entry lookup failed")
		}
		metrics.IncResultCache("miss")
		return nil, false
	}
	metrics.IncResultCache("db_hit")
	if err := u.cache.Store(ctx, entry); err != nil {
		u.log.Warn().Err(err).Str("space_id", spaceID).Msg("result cache refresh failed")
	}
	return entry, true
}

func (u *jobUC) Get(ctx context.Context, jobID string) (*model.Job, error) {
	defer logging.TraceDuration(u.log, "JobUC.Get")()
	return u.jobs.FindByID(ctx, repository.NoTX, jobID)
}
