package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "dashboard:session:"

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionRepository stores each session as one hash whose expiry is refreshed on write.
func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *redisSessionRepository) key(sid string) string {
	return sessionKeyPrefix + sid
}

func (r *redisSessionRepository) Get(ctx context.Context, sid, field string) (string, error) {
	v, err := r.rdb.HGet(ctx, r.key(sid), field).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redisSessionRepository.Get: %w", err)
	}
	return v, nil
}

func (r *redisSessionRepository) GetAll(ctx context.Context, sid string) (map[string]string, error) {
	values, err := r.rdb.HGetAll(ctx, r.key(sid)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisSessionRepository.GetAll: %w", err)
	}
	return values, nil
}

func (r *redisSessionRepository) Set(ctx context.Context, sid string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	args := make(map[string]any, len(values))
	for k, v := range values {
		args[k] = v
	}
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.key(sid), args)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key(sid), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisSessionRepository.Set: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.rdb.HDel(ctx, r.key(sid), keys...).Err(); err != nil {
		return fmt.Errorf("redisSessionRepository.Delete: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Clear(ctx context.Context, sid string) error {
	if err := r.rdb.Del(ctx, r.key(sid)).Err(); err != nil {
		return fmt.Errorf("redisSessionRepository.Clear: %w", err)
	}
	return nil
}
