package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"decor-studio/internal/config"
	"decor-studio/internal/domain"
	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/repository"
	"decor-studio/internal/infra/logging"
	"decor-studio/internal/infra/metrics"
)

// Compile-time check
var _ CompletionUseCase = (*completionUC)(nil)

// CompletionClaimer is a short-lived per-job claim. It only thins the herd of
// concurrent observers; correctness comes from the database constraints.
type CompletionClaimer interface {
	TryClaim(ctx context.Context, jobID string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, jobID, token string) error
}

// CompletionUseCase applies the side effects of a completed job: persist the
// entry for the (space, user) pair and deduct the job's credit cost. Effects
// are applied at most once per job id no matter how many observers call in.
type CompletionUseCase interface {
	Settle(ctx context.Context, job *model.Job) (*model.SpaceResult, error)
}

type completionUC struct {
	tm       repository.TransactionManager
	results  repository.SpaceResultRepository
	credits  repository.CreditRepository
	cache    ResultCache
	claims   CompletionClaimer
	costs    config.CostConfig
	claimTTL time.Duration
	log      *zerolog.Logger
}

func NewCompletionUseCase(
	tm repository.TransactionManager,
	results repository.SpaceResultRepository,
	credits repository.CreditRepository,
	cache ResultCache,
	claims CompletionClaimer,
	costs config.CostConfig,
	logger *zerolog.Logger,
) *completionUC {
	return &completionUC{
		tm:       tm,
		results:  results,
		credits:  credits,
		cache:    cache,
		claims:   claims,
		costs:    costs,
		claimTTL: 30 * time.Second,
		log:      logger,
	}
}

func (u *completionUC) Settle(ctx context.Context, job *model.Job) (*model.SpaceResult, error) {
	defer logging.TraceDuration(u.log, "CompletionUC.Settle")()

	if job == nil || job.Status != model.JobStatusCompleted || job.Result == nil {
		return nil, domain.ErrInvalidArgument
	}

	entry, cost, err := u.buildEntry(ctx, job)
	if err != nil {
		return nil, err
	}

	// Fast path: when another observer holds the claim, serve the entry
	// without touching the database. Its effects either landed already or
	// are about to; the constraints below make the race harmless.
	token, claimed, cerr := u.claims.TryClaim(ctx, job.ID, u.claimTTL)
	if cerr != nil {
		u.log.Warn().Err(cerr).Str("job_id", job.ID).Msg("completion claim unavailable")
	} else if !claimed {
		if latest, lerr := u.results.Latest(ctx, repository.NoTX, job.SpaceID, job.UserID); lerr == nil && latest.JobID == job.ID {
			return latest, nil
		}
		return entry, nil
	}

	applied := false
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		inserted, err := u.results.Insert(ctx, tx, entry)
		if err != nil {
			return err
		}
		if !inserted {
			// A previous observer settled this job; the ledger entry is
			// already there too.
			return nil
		}
		applied = true
		if cost > 0 {
			if _, err := u.credits.DeductForJob(ctx, tx, job.UserID, job.ID, cost); err != nil {
				return fmt.Errorf("deduct for job %s: %w", job.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		if claimed {
			if rerr := u.claims.Release(ctx, job.ID, token); rerr != nil {
				u.log.Warn().Err(rerr).Str("job_id", job.ID).Msg("claim release failed")
			}
		}
		if errors.Is(err, domain.ErrInsufficientCredits) {
			metrics.IncCreditBlocked()
		}
		return nil, err
	}

	if applied && cost > 0 {
		metrics.AddCreditsDeducted(string(job.Type), cost)
	}
	if err := u.cache.Store(ctx, entry); err != nil {
		u.log.Warn().Err(err).Str("job_id", job.ID).Msg("result cache refresh failed")
	}
	return entry, nil
}

// buildEntry shapes the persisted row per job type. Auto-select and image
// entries carry the prior products forward so the latest row for a space is
// always self-contained.
func (u *completionUC) buildEntry(ctx context.Context, job *model.Job) (*model.SpaceResult, int64, error) {
	entry := &model.SpaceResult{
		JobID:   job.ID,
		SpaceID: job.SpaceID,
		UserID:  job.UserID,
	}
	cost := costFor(u.costs, job.Type)

	switch job.Type {
	case model.JobTypeProductSearch:
		cats, err := model.ParseSearchResult(job.Result)
		if err != nil {
			return nil, 0, fmt.Errorf("parse search result: %w", err)
		}
		entry.Products = cats

	case model.JobTypeAutoSelect:
		ids, err := model.ParseAutoSelectIDs(job.Result)
		if err != nil {
			return nil, 0, fmt.Errorf("parse auto-select result: %w", err)
		}
		prior, err := u.priorEntry(ctx, job)
		if err != nil {
			return nil, 0, err
		}
		if prior != nil {
			entry.Products = prior.Products
			entry.SelectedProducts = model.MapSelection(prior.Products, ids)
		}

	case model.JobTypeImageGeneration:
		url, coords, err := model.ParseImageResult(job.Result)
		if err != nil {
			return nil, 0, fmt.Errorf("parse image result: %w", err)
		}
		entry.GeneratedImageURL = url
		entry.Coordinates = coords
		if prior, err := u.priorEntry(ctx, job); err == nil && prior != nil {
			entry.Products = prior.Products
			entry.SelectedProducts = prior.SelectedProducts
		}
		if len(entry.SelectedProducts) == 0 && len(job.Payload.ProductJSON) > 0 {
			// The client sent its own selection with the request.
			entry.Products = job.Payload.ProductJSON
		}

	default:
		return nil, 0, domain.ErrInvalidArgument
	}

	return entry, cost, nil
}

func (u *completionUC) priorEntry(ctx context.Context, job *model.Job) (*model.SpaceResult, error) {
	prior, err := u.results.Latest(ctx, repository.NoTX, job.SpaceID, job.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return prior, nil
}
