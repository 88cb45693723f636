package adapter

import (
	"context"

	"decor-studio/internal/domain/model"
)

// ComputeAdapter performs the single external compute call for a job. The
// call must respect ctx cancellation; the worker bounds it with the
// configured timeout.
type ComputeAdapter interface {
	Run(ctx context.Context, jobType model.JobType, payload *model.JobPayload) (*model.JobResult, error)
}
