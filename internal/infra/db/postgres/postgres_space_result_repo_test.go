//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"decor-studio/internal/domain"
	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/repository"
)

func TestSpaceResultRepo_InsertIsIdempotentPerJob(t *testing.T) {
	cleanup(t)
	jobs := NewJobRepo(testPool)
	repo := NewSpaceResultRepo(testPool)
	ctx := context.Background()

	seedJob(t, jobs, "job-1")
	entry := &model.SpaceResult{
		JobID:   "job-1",
		SpaceID: "s1",
		UserID:  "u1",
		Products: []model.ProductCategory{
			{Category: "sofa", Products: []model.Product{{ID: "p1", Title: "Sofa"}}},
		},
	}

	inserted, err := repo.Insert(ctx, repository.NoTX, entry)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !inserted {
		t.Fatalf("expected the first insert to land")
	}

	dup := &model.SpaceResult{JobID: "job-1", SpaceID: "s1", UserID: "u1"}
	inserted, err = repo.Insert(ctx, repository.NoTX, dup)
	if err != nil {
		t.Fatalf("duplicate Insert: %v", err)
	}
	if inserted {
		t.Fatalf("duplicate job id must not insert a second row")
	}
}

func TestSpaceResultRepo_LatestReturnsNewestRow(t *testing.T) {
	cleanup(t)
	jobs := NewJobRepo(testPool)
	repo := NewSpaceResultRepo(testPool)
	ctx := context.Background()

	if _, err := repo.Latest(ctx, repository.NoTX, "s1", "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on an empty space, got %v", err)
	}

	seedJob(t, jobs, "job-1")
	seedJob(t, jobs, "job-2")

	older := &model.SpaceResult{
		JobID: "job-1", SpaceID: "s1", UserID: "u1",
		Products:  []model.ProductCategory{{Category: "sofa", Products: []model.Product{{ID: "p1", Title: "Sofa"}}}},
		CreatedAt: time.Now().Add(-time.Hour),
	}
	newer := &model.SpaceResult{
		JobID: "job-2", SpaceID: "s1", UserID: "u1",
		GeneratedImageURL: "http://img/out.png",
		CreatedAt:         time.Now(),
	}
	if _, err := repo.Insert(ctx, repository.NoTX, older); err != nil {
		t.Fatalf("insert older: %v", err)
	}
	if _, err := repo.Insert(ctx, repository.NoTX, newer); err != nil {
		t.Fatalf("insert newer: %v", err)
	}

	got, err := repo.Latest(ctx, repository.NoTX, "s1", "u1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.JobID != "job-2" || got.GeneratedImageURL != "http://img/out.png" {
		t.Fatalf("expected the newest row, got %+v", got)
	}

	// Other users of the same space see nothing.
	if _, err := repo.Latest(ctx, repository.NoTX, "s1", "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
}
