package repository

import (
	"context"

	"decor-studio/internal/domain/model"
)

type SpaceResultRepository interface {
	// Insert appends a new row. The (job_id) uniqueness makes the insert
	// idempotent: inserted=false means another observer already persisted the
	// effects for this job.
	Insert(ctx context.Context, tx Tx, entry *model.SpaceResult) (inserted bool, err error)

	// Latest returns the most recently created row for the pair, or
	// domain.ErrNotFound.
	Latest(ctx context.Context, tx Tx, spaceID, userID string) (*model.SpaceResult, error)
}
