package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function inside a database transaction,
// passing the transaction handle to repositories via the opaque Tx argument.
// Use-case interfaces stay free of driver types; repositories detect the
// concrete handle (pgx.Tx for Postgres) and must gracefully accept nil for
// the non-transactional path.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
