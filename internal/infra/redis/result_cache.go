package redis

import (
	"context"
	"encoding/json"
	"time"

	"decor-studio/internal/domain/model"
)

// ResultCache fronts the latest space result per (space, user). A miss is
// not an error; the caller falls through to the database.
type ResultCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewResultCache(client RedisClient, ttl time.Duration) *ResultCache {
	return &ResultCache{
		client: client,
		ttl:    ttl,
	}
}

func resultKey(spaceID, userID string) string {
	return "space_result:" + spaceID + ":" + userID
}

func (c *ResultCache) Get(ctx context.Context, spaceID, userID string) (*model.SpaceResult, bool) {
	data, err := c.client.Get(ctx, resultKey(spaceID, userID))
	if err != nil {
		// A miss and a broken cache look the same to the caller;
		// neither may block the request path.
		return nil, false
	}

	var entry model.SpaceResult
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, false
	}
	return &entry, true
}

func (c *ResultCache) Store(ctx context.Context, entry *model.SpaceResult) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultKey(entry.SpaceID, entry.UserID), data, c.ttl)
}

func (c *ResultCache) Invalidate(ctx context.Context, spaceID, userID string) error {
	return c.client.Del(ctx, resultKey(spaceID, userID))
}
