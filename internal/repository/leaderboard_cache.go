package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hubcoin/internal/domain"

	redis "github.com/redis/go-redis/v9"
)

const leaderboardCacheKey = "leaderboard:" + domain.LeaderboardID

// RedisLeaderboardCache keeps the latest snapshot in Redis so the
// mini-app's leaderboard page does not hit Postgres on every open.
type RedisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{client: client, ttl: ttl}
}

func (c *RedisLeaderboardCache) Get(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	raw, err := c.client.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var s domain.LeaderboardSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s.Players == nil {
		s.Players = []domain.LeaderboardEntry{}
	}
	return &s, nil
}

func (c *RedisLeaderboardCache) Set(ctx context.Context, s *domain.LeaderboardSnapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardCacheKey, raw, c.ttl).Err()
}

func (c *RedisLeaderboardCache) Fill(ctx context.Context, s *domain.LeaderboardSnapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, leaderboardCacheKey, raw, c.ttl).Err()
}
