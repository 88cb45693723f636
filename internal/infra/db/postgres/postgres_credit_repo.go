package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"decor-studio/internal/domain"
	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/repository"
)

var _ repository.CreditRepository = (*creditRepo)(nil)

// creditRepo keeps per-user balances. Deductions are a single conditional
// decrement; the check and the write are one statement, so two concurrent
// deductions can never both pass against a stale balance.
type creditRepo struct {
	pool *pgxpool.Pool
}

func NewCreditRepo(pool *pgxpool.Pool) *creditRepo {
	return &creditRepo{pool: pool}
}

func (r *creditRepo) Balance(ctx context.Context, tx repository.Tx, userID string) (int64, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT amount FROM credits WHERE user_id = $1;`, userID)
	if err != nil {
		return 0, err
	}
	var amount int64
	if err := row.Scan(&amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return amount, nil
}

func (r *creditRepo) Deduct(ctx context.Context, tx repository.Tx, userID string, amount int64) (*model.Deduction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	const q = `
UPDATE credits
   SET amount = amount - $2, updated_at = now()
 WHERE user_id = $1 AND amount >= $2
RETURNING amount;`

	row, err := pickRow(ctx, r.pool, tx, q, userID, amount)
	if err != nil {
		return nil, err
	}
	var newAmount int64
	if err := row.Scan(&newAmount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No row updated: either the account is short or it does not exist.
			if _, berr := r.Balance(ctx, tx, userID); berr != nil {
				return nil, berr
			}
			return nil, domain.ErrInsufficientCredits
		}
		return nil, err
	}
	return &model.Deduction{Previous: newAmount + amount, New: newAmount, Amount: amount}, nil
}

// DeductForJob inserts a job-keyed ledger entry and deducts only when the
// entry is new. A duplicate job id means the deduction already happened;
// applied=false tells the caller to skip.
func (r *creditRepo) DeductForJob(ctx context.Context, tx repository.Tx, userID, jobID string, amount int64) (bool, error) {
	if amount <= 0 {
		// Free job types still get no ledger entry.
		return false, nil
	}

	const q = `
INSERT INTO credit_entries (id, user_id, job_id, amount, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (job_id) DO NOTHING;`

	tag, err := execSQL(ctx, r.pool, tx, q, uuid.NewString(), userID, jobID, amount, time.Now())
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if _, err := r.Deduct(ctx, tx, userID, amount); err != nil {
		return false, err
	}
	return true, nil
}

func (r *creditRepo) Grant(ctx context.Context, tx repository.Tx, userID string, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidArgument
	}

	const q = `
INSERT INTO credits (user_id, amount, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET
  amount = credits.amount + EXCLUDED.amount,
  updated_at = now();`

	_, err := execSQL(ctx, r.pool, tx, q, userID, amount)
	return err
}
