package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/repository"
	"decor-studio/internal/infra/logging"
	"decor-studio/internal/infra/metrics"
)

// Compile-time check
var _ CreditUseCase = (*creditUC)(nil)

// CreditUseCase exposes balance reads and direct deductions.
type CreditUseCase interface {
	Balance(ctx context.Context, userID string) (int64, error)
	Deduct(ctx context.Context, userID string, amount int64) (*model.Deduction, error)
	Grant(ctx context.Context, userID string, amount int64) error
}

type creditUC struct {
	credits repository.CreditRepository
	log     *zerolog.Logger
}

func NewCreditUseCase(credits repository.CreditRepository, logger *zerolog.Logger) *creditUC {
	return &creditUC{
		credits: credits,
		log:     logger,
	}
}

func (u *creditUC) Balance(ctx context.Context, userID string) (int64, error) {
	defer logging.TraceDuration(u.log, "CreditUC.Balance")()
	return u.credits.Balance(ctx, repository.NoTX, userID)
}

// Deduct takes amount from the user's balance in one conditional statement.
// The balance is never read first, so concurrent deductions cannot both
// succeed against the same credits.
func (u *creditUC) Deduct(ctx context.Context, userID string, amount int64) (*model.Deduction, error) {
	defer logging.TraceDuration(u.log, "CreditUC.Deduct")()

	d, err := u.credits.Deduct(ctx, repository.NoTX, userID, amount)
	if err != nil {
		return nil, err
	}
	metrics.AddCreditsDeducted("manual", amount)
	return d, nil
}

func (u *creditUC) Grant(ctx context.Context, userID string, amount int64) error {
	defer logging.TraceDuration(u.log, "CreditUC.Grant")()
	return u.credits.Grant(ctx, repository.NoTX, userID, amount)
}
