package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	tokenKeySuffix  = "token"
	expiryKeySuffix = "token_expiry"
)

// RedisStore defines a public type used by goSession APIs.
//
// RedisStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a [Store] backed by the given Redis client. Keys are
// "<prefix>:token" and "<prefix>:token_expiry", both plain strings.
func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gosess"
	}
	return &RedisStore{redis: redisClient, prefix: prefix}
}

func (s *RedisStore) key(suffix string) string {
	return s.prefix + ":" + suffix
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation or dependency calls fail.
// Load does not mutate shared global state and can be used concurrently.
func (s *RedisStore) Load(ctx context.Context) (*TokenRecord, error) {
	vals, err := s.redis.MGet(ctx, s.key(tokenKeySuffix), s.key(expiryKeySuffix)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	token, _ := vals[0].(string)
	expiryStr, _ := vals[1].(string)
	if token == "" || expiryStr == "" {
		return nil, ErrNotFound
	}
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}

	return &TokenRecord{Token: token, ExpiresAt: expiry}, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation or dependency calls fail.
// Save does not mutate shared global state and can be used concurrently.
func (s *RedisStore) Save(ctx context.Context, rec TokenRecord) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(tokenKeySuffix), rec.Token, 0)
		pipe.Set(ctx, s.key(expiryKeySuffix), strconv.FormatInt(rec.ExpiresAt, 10), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation or dependency calls fail.
// Clear does not mutate shared global state and can be used concurrently.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key(tokenKeySuffix), s.key(expiryKeySuffix)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
