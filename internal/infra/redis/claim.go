package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Claimer is a short-lived per-job claim used to fast-path the completion
// pipeline. It is an optimization only; the database uniqueness constraints
// remain the source of truth for exactly-once.
type Claimer interface {
	TryClaim(ctx context.Context, jobID string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, jobID, token string) error
}

type RedisClaimer struct {
	cli *redis.Client
}

func NewClaimer(c *Client) *RedisClaimer {
	return &RedisClaimer{cli: c.cli}
}

func claimKey(jobID string) string { return "job_claim:" + jobID }

func (l *RedisClaimer) TryClaim(ctx context.Context, jobID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.cli.SetNX(ctx, claimKey(jobID), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

var luaRelease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *RedisClaimer) Release(ctx context.Context, jobID, token string) error {
	_, err := luaRelease.Run(ctx, l.cli, []string{claimKey(jobID)}, token).Result()
	return err
}
