package repository

import (
	"context"

	"decor-studio/internal/domain/model"
)

type CreditRepository interface {
	Balance(ctx context.Context, tx Tx, userID string) (int64, error)

	// Deduct decrements the balance as one conditional statement
	// ("amount = amount - $n where amount >= $n"); it never reads first and
	// returns domain.ErrInsufficientCredits without touching the balance when
	// the account cannot cover the amount.
	Deduct(ctx context.Context, tx Tx, userID string, amount int64) (*model.Deduction, error)

	// DeductForJob is Deduct plus a credit_entries row keyed by job id. When
	// an entry for the job already exists the deduction is skipped and
	// applied=false is returned.
	DeductForJob(ctx context.Context, tx Tx, userID, jobID string, amount int64) (applied bool, err error)

	// Grant adds credits, creating the account on first use.
	Grant(ctx context.Context, tx Tx, userID string, amount int64) error
}
