package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const liveKeyPrefix = "scorekeep:live:"

// LiveCache mirrors the latest match snapshot into redis so external
// scoreboards can read the live score without touching SQLite. A nil cache
// is a no-op, for deployments without redis.
type LiveCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLiveCache(rdb *redis.Client) *LiveCache {
	return &LiveCache{rdb: rdb, ttl: 24 * time.Hour}
}

// Update writes the snapshot under scorekeep:live:{matchID}.
func (c *LiveCache) Update(ctx context.Context, matchID string, state MatchState) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, liveKeyPrefix+matchID, data, c.ttl).Err()
}

// Remove drops the snapshot, e.g. when the match is deleted.
func (c *LiveCache) Remove(ctx context.Context, matchID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, liveKeyPrefix+matchID).Err()
}
