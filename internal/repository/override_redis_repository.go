package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-portal/internal/models"
)

// overrideHash is the subset of the Redis client the override store uses.
type overrideHash interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
}

// RedisOverrideRepository keeps all overrides in one Redis hash, one field per assignment.
type RedisOverrideRepository struct {
	client overrideHash
	key    string
	logger *zap.Logger
}

// NewRedisOverrideRepository constructs the repository for the hash at key.
func NewRedisOverrideRepository(client overrideHash, key string, logger *zap.Logger) *RedisOverrideRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisOverrideRepository{client: client, key: key, logger: logger}
}

func (r *RedisOverrideRepository) Get(ctx context.Context, assignmentID string) (*models.LocalOverride, error) {
	raw, err := r.client.HGet(ctx, r.key, assignmentID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis hget override %s: %w", assignmentID, err)
	}
	var o models.LocalOverride
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("decode override %s: %w", assignmentID, err)
	}
	o.AssignmentID = assignmentID
	return &o, nil
}

// All skips fields that no longer decode instead of failing the whole read.
func (r *RedisOverrideRepository) All(ctx context.Context) (map[string]models.LocalOverride, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall overrides: %w", err)
	}
	out := make(map[string]models.LocalOverride, len(fields))
	for id, raw := range fields {
		var o models.LocalOverride
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			r.logger.Warn("skipping undecodable override", zap.String("assignment_id", id), zap.Error(err))
			continue
		}
		o.AssignmentID = id
		out[id] = o
	}
	return out, nil
}

func (r *RedisOverrideRepository) Put(ctx context.Context, o models.LocalOverride) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode override %s: %w", o.AssignmentID, err)
	}
	if err := r.client.HSet(ctx, r.key, o.AssignmentID, raw).Err(); err != nil {
		return fmt.Errorf("redis hset override %s: %w", o.AssignmentID, err)
	}
	return nil
}

func (r *RedisOverrideRepository) Delete(ctx context.Context, assignmentID string) error {
	if err := r.client.HDel(ctx, r.key, assignmentID).Err(); err != nil {
		return fmt.Errorf("redis hdel override %s: %w", assignmentID, err)
	}
	return nil
}
