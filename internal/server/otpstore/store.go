// Package otpstore keeps pending one-time-password challenges in Redis so
// they expire on their own and survive server restarts.
package otpstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"github.com/redis/go-redis/v9"
)

// Challenge is what is stored per pending code: never the code itself.
type Challenge struct {
	Salt []byte `json:"salt"`
	Hash []byte `json:"hash"`
}

type Store interface {
	Save(ctx context.Context, key string, c *Challenge) error
	// Get returns common.ErrOTPExpired when no challenge is pending.
	Get(ctx context.Context, key string) (*Challenge, error)
	// RecordAttempt counts a verification attempt and returns the running
	// total. The counter is atomic, so concurrent callers see distinct values.
	RecordAttempt(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
}

type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func challengeKey(key string) string { return "otp:" + key }
func attemptsKey(key string) string  { return "otp:" + key + ":attempts" }

// Save replaces any pending challenge for key and resets its attempt counter.
func (s *RedisStore) Save(ctx context.Context, key string, c *Challenge) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, challengeKey(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if err := s.rdb.Del(ctx, attemptsKey(key)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Challenge, error) {
	raw, err := s.rdb.Get(ctx, challengeKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrOTPExpired
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var c Challenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *RedisStore) RecordAttempt(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.Incr(ctx, attemptsKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	if n == 1 {
		if err := s.rdb.Expire(ctx, attemptsKey(key), s.ttl).Err(); err != nil {
			return 0, fmt.Errorf("redis error: %w", err)
		}
	}
	return n, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, challengeKey(key), attemptsKey(key)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// NewRedisClient connects and pings, failing fast when Redis is unreachable.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return rdb, nil
}
