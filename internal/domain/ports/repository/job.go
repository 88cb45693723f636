package repository

import (
	"context"
	"time"

	"decor-studio/internal/domain/model"
)

type JobRepository interface {
	// Create inserts a new pending job. The job must not already exist.
	Create(ctx context.Context, tx Tx, job *model.Job) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Job, error)

	// MarkProcessing performs the pending->processing intake transition as a
	// single conditional update and grants a lease. Returns
	// domain.ErrJobAlreadyTaken when the job is no longer pending, which makes
	// duplicate dispatch a no-op.
	MarkProcessing(ctx context.Context, id string, leaseUntil time.Time) (*model.Job, error)

	// ExtendLease refreshes the lease of a job still in processing.
	ExtendLease(ctx context.Context, id string, leaseUntil time.Time) error

	// Complete sets the result on the processing->completed edge. Terminal
	// rows are never touched; a second call returns domain.ErrInvalidTransition.
	Complete(ctx context.Context, id string, result *model.JobResult) error

	// Fail records the error message on the processing->failed edge.
	Fail(ctx context.Context, id string, errMsg string) error

	// FailDispatch moves a job straight from pending to failed. This is the
	// gateway's path when the intake call never reached the worker.
	FailDispatch(ctx context.Context, id string, errMsg string) error

	// FailStale fails processing jobs whose lease expired before the given
	// moment and returns their ids. Used by the reaper.
	FailStale(ctx context.Context, olderThan time.Time, errMsg string) ([]string, error)
}
