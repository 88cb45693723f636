package model

import (
	"errors"
	"testing"
	"time"

	"decor-studio/internal/domain"
)

func newPendingJob(t *testing.T) *Job {
	t.Helper()
	job, err := NewJob("job-1", JobTypeImageGeneration, JobPayload{UserID: "u1", SpaceID: "s1"})
	if err != nil {
		t.Fatalf("NewJob returned error: %v", err)
	}
	return job
}

func TestNewJob_RequiresUserAndSpace(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload JobPayload
	}{
		{"missing user", JobPayload{SpaceID: "s1"}},
		{"missing space", JobPayload{UserID: "u1"}},
		{"empty", JobPayload{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewJob("id", JobTypeAutoSelect, tc.payload); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestJob_LifecycleHappyPath(t *testing.T) {
	t.Parallel()

	job := newPendingJob(t)
	lease := time.Now().Add(time.Minute)

	if err := job.MarkProcessing(lease); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if job.Status != JobStatusProcessing || job.LeaseExpiresAt == nil {
		t.Fatalf("expected processing with a lease, got %s", job.Status)
	}

	if err := job.Complete(&JobResult{Status: "success"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if job.Status != JobStatusCompleted || job.Result == nil || job.LeaseExpiresAt != nil {
		t.Fatalf("expected completed with result and no lease")
	}
}

func TestJob_DuplicateIntake(t *testing.T) {
	t.Parallel()

	job := newPendingJob(t)
	lease := time.Now().Add(time.Minute)
	if err := job.MarkProcessing(lease); err != nil {
		t.Fatalf("first intake: %v", err)
	}
	if err := job.MarkProcessing(lease); !errors.Is(err, domain.ErrJobAlreadyTaken) {
		t.Fatalf("expected ErrJobAlreadyTaken on duplicate intake, got %v", err)
	}
}

func TestJob_TerminalStatesAreImmutable(t *testing.T) {
	t.Parallel()

	completed := newPendingJob(t)
	_ = completed.MarkProcessing(time.Now().Add(time.Minute))
	_ = completed.Complete(&JobResult{Status: "success"})

	if err := completed.Fail("late failure"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("completed job must not fail, got %v", err)
	}
	if err := completed.MarkProcessing(time.Now()); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("completed job must not re-enter processing, got %v", err)
	}

	failed := newPendingJob(t)
	_ = failed.MarkProcessing(time.Now().Add(time.Minute))
	_ = failed.Fail("boom")

	if err := failed.Complete(&JobResult{Status: "success"}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("failed job must not complete, got %v", err)
	}
	if failed.ErrorMessage != "boom" {
		t.Fatalf("error message lost: %q", failed.ErrorMessage)
	}
}

func TestJob_CannotCompleteFromPending(t *testing.T) {
	t.Parallel()

	job := newPendingJob(t)
	if err := job.Complete(&JobResult{Status: "success"}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("pending job must pass through processing, got %v", err)
	}
}

func TestParseJobType(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"auto_select", "image_generation", "product_search", " product_search "} {
		if _, err := ParseJobType(valid); err != nil {
			t.Fatalf("expected %q to parse, got %v", valid, err)
		}
	}
	if _, err := ParseJobType("video_render"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown type, got %v", err)
	}
}
