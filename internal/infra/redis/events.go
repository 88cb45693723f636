package redis

import (
	"context"
)

// JobEvents announces terminal job transitions over pub/sub so pollers can
// wake up before their next scheduled tick. Delivery is best effort; pollers
// still fall back to interval polling.
type JobEvents struct {
	client RedisClient
}

func NewJobEvents(client RedisClient) *JobEvents {
	return &JobEvents{client: client}
}

func doneChannel(jobID string) string { return "jobs:done:" + jobID }

// PublishDone signals that the job reached a terminal status.
func (e *JobEvents) PublishDone(ctx context.Context, jobID, status string) error {
	return e.client.Publish(ctx, doneChannel(jobID), status)
}

// WaitDone blocks until the job's done signal arrives or the context ends.
// Returns the published status, or "" when the context expired first.
func (e *JobEvents) WaitDone(ctx context.Context, jobID string) (string, error) {
	sub := e.client.Subscribe(ctx, doneChannel(jobID))
	defer sub.Close()

	select {
	case msg := <-sub.Channel():
		if msg == nil {
			return "", ctx.Err()
		}
		return msg.Payload, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
