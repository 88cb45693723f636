package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"decor-studio/internal/domain"
	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

// jobRepo persists jobs. Every transition is a single conditional UPDATE so a
// terminal row can never be rewritten, regardless of how many observers race.
type jobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *jobRepo {
	return &jobRepo{pool: pool}
}

const jobColumns = `id, user_id, space_id, job_type, status, payload, result, error_message, lease_expires_at, created_at, updated_at`

func (r *jobRepo) Create(ctx context.Context, tx repository.Tx, job *model.Job) error {
	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO jobs (id, user_id, space_id, job_type, status, payload, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err = execSQL(ctx, r.pool, tx, q,
		job.ID, job.UserID, job.SpaceID, string(job.Type), string(job.Status), payload, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *jobRepo) MarkProcessing(ctx context.Context, id string, leaseUntil time.Time) (*model.Job, error) {
	const q = `
UPDATE jobs
   SET status = 'processing', lease_expires_at = $2, updated_at = now()
 WHERE id = $1 AND status = 'pending'
RETURNING ` + jobColumns + `;`

	row, err := pickRow(ctx, r.pool, nil, q, id, leaseUntil)
	if err != nil {
		return nil, err
	}
	job, err := scanJob(row)
	if errors.Is(err, domain.ErrNotFound) {
		// The row exists but was not pending, or does not exist at all.
		if _, ferr := r.FindByID(ctx, nil, id); ferr != nil {
			return nil, ferr
		}
		return nil, domain.ErrJobAlreadyTaken
	}
	return job, err
}

func (r *jobRepo) ExtendLease(ctx context.Context, id string, leaseUntil time.Time) error {
	const q = `
UPDATE jobs SET lease_expires_at = $2, updated_at = now()
 WHERE id = $1 AND status = 'processing';`
	_, err := execSQL(ctx, r.pool, nil, q, id, leaseUntil)
	return err
}

func (r *jobRepo) Complete(ctx context.Context, id string, result *model.JobResult) error {
	res, err := json.Marshal(result)
	if err != nil {
		return err
	}

	const q = `
UPDATE jobs
   SET status = 'completed', result = $2, lease_expires_at = NULL, updated_at = now()
 WHERE id = $1 AND status = 'processing';`

	tag, err := execSQL(ctx, r.pool, nil, q, id, res)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *jobRepo) Fail(ctx context.Context, id string, errMsg string) error {
	const q = `
UPDATE jobs
   SET status = 'failed', error_message = $2, lease_expires_at = NULL, updated_at = now()
 WHERE id = $1 AND status = 'processing';`

	tag, err := execSQL(ctx, r.pool, nil, q, id, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// FailDispatch is the only pending->failed edge; it exists for gateway
// dispatch errors, before any worker-side state change.
func (r *jobRepo) FailDispatch(ctx context.Context, id string, errMsg string) error {
	const q = `
UPDATE jobs
   SET status = 'failed', error_message = $2, updated_at = now()
 WHERE id = $1 AND status = 'pending';`

	tag, err := execSQL(ctx, r.pool, nil, q, id, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *jobRepo) FailStale(ctx context.Context, olderThan time.Time, errMsg string) ([]string, error) {
	const q = `
UPDATE jobs
   SET status = 'failed', error_message = $2, lease_expires_at = NULL, updated_at = now()
 WHERE status = 'processing' AND lease_expires_at IS NOT NULL AND lease_expires_at < $1
RETURNING id;`

	ex, err := getExecutor(r.pool, nil)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, olderThan, errMsg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var (
		j         model.Job
		typeStr   string
		statusStr string
		payload   []byte
		result    []byte
		errMsg    *string
		lease     *time.Time
	)
	err := row.Scan(&j.ID, &j.UserID, &j.SpaceID, &typeStr, &statusStr, &payload, &result, &errMsg, &lease, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	j.Type = model.JobType(typeStr)
	j.Status = model.JobStatus(statusStr)
	j.LeaseExpiresAt = lease
	if errMsg != nil {
		j.ErrorMessage = *errMsg
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &j.Payload); err != nil {
			return nil, err
		}
	}
	if len(result) > 0 {
		var res model.JobResult
		if err := json.Unmarshal(result, &res); err != nil {
			return nil, err
		}
		j.Result = &res
	}
	return &j, nil
}
