package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"decor-studio/internal/domain"
	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/repository"
)

var _ repository.SpaceResultRepository = (*spaceResultRepo)(nil)

// spaceResultRepo is the append-only memoization table. Rows are never
// updated or deleted; the newest row per (space, user) wins.
type spaceResultRepo struct {
	pool *pgxpool.Pool
}

func NewSpaceResultRepo(pool *pgxpool.Pool) *spaceResultRepo {
	return &spaceResultRepo{pool: pool}
}

func (r *spaceResultRepo) Insert(ctx context.Context, tx repository.Tx, entry *model.SpaceResult) (bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	products, err := json.Marshal(entry.Products)
	if err != nil {
		return false, err
	}
	selected, err := json.Marshal(entry.SelectedProducts)
	if err != nil {
		return false, err
	}
	coords, err := json.Marshal(entry.Coordinates)
	if err != nil {
		return false, err
	}

	const q = `
INSERT INTO space_info (id, job_id, space_id, user_id, products, selected_products, generated_image_url, coordinates, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
ON CONFLICT (job_id) DO NOTHING;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		entry.ID, entry.JobID, entry.SpaceID, entry.UserID, products, selected, entry.GeneratedImageURL, coords, entry.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *spaceResultRepo) Latest(ctx context.Context, tx repository.Tx, spaceID, userID string) (*model.SpaceResult, error) {
	const q = `
SELECT id, job_id, space_id, user_id, products, selected_products, generated_image_url, coordinates, created_at
  FROM space_info
 WHERE space_id = $1 AND user_id = $2
 ORDER BY created_at DESC
 LIMIT 1;`

	row, err := pickRow(ctx, r.pool, tx, q, spaceID, userID)
	if err != nil {
		return nil, err
	}

	var (
		e        model.SpaceResult
		products []byte
		selected []byte
		imageURL *string
		coords   []byte
	)
	if err := row.Scan(&e.ID, &e.JobID, &e.SpaceID, &e.UserID, &products, &selected, &imageURL, &coords, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if imageURL != nil {
		e.GeneratedImageURL = *imageURL
	}
	if len(products) > 0 {
		if err := json.Unmarshal(products, &e.Products); err != nil {
			return nil, err
		}
	}
	if len(selected) > 0 {
		if err := json.Unmarshal(selected, &e.SelectedProducts); err != nil {
			return nil, err
		}
	}
	if len(coords) > 0 {
		if err := json.Unmarshal(coords, &e.Coordinates); err != nil {
			return nil, err
		}
	}
	return &e, nil
}
