package adapter

import "context"

// JobDispatcher hands a freshly created job to the processing side. Dispatch
// returns once the job is accepted for processing; completion is observed by
// polling, never through this call.
type JobDispatcher interface {
	Dispatch(ctx context.Context, jobID string) error
}
