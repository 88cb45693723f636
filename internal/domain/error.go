package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrDispatchFailed      = errors.New("dispatch failed")
	ErrPollTimeout         = errors.New("poll timeout")
	ErrJobAlreadyTaken     = errors.New("job already taken by a worker")
	ErrInvalidTransition   = errors.New("invalid job status transition")
	ErrInvalidExecContext  = errors.New("invalid query execution context")
)

// JobFailedError surfaces a failed job's recorded error message to a poller.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}
