// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
	"github.com/taibuivan/usersapi/internal/platform/constants"
)

// AttemptLimiter throttles repeated login failures.
type AttemptLimiter interface {
	// Check returns apperr.RateLimited once the failure allowance for key is spent.
	Check(context context.Context, key string) error

	// Fail records one failed attempt for key.
	Fail(context context.Context, key string) error

	// Reset forgets all failures for key.
	Reset(context context.Context, key string) error
}

// AttemptKey scopes the failure counter to an account and a client address.
func AttemptKey(email, ipAddress string) string {
	return strings.ToLower(strings.TrimSpace(email)) + ":" + ipAddress
}

// RedisAttemptLimiter implements [AttemptLimiter] with a fixed window counter.
//
// The first failure creates the key with a TTL of window; later failures only
// increment it, so the window is not extended by an attacker.
type RedisAttemptLimiter struct {
	client      redis.UniversalClient
	maxAttempts int64
	window      time.Duration
}

// NewAttemptLimiter creates a Redis-backed limiter allowing maxAttempts
// failures per window.
func NewAttemptLimiter(client redis.UniversalClient, maxAttempts int64, window time.Duration) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

/*
Check reports whether key may attempt another login.

Returns:
  - error: apperr.RateLimited with the remaining window as Retry-After,
    or a wrapped Redis failure
*/
func (limiter *RedisAttemptLimiter) Check(context context.Context, key string) error {
	redisKey := constants.RedisPrefixLoginAttempts + key

	attempts, err := limiter.client.Get(context, redisKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis_login_attempts_get_failed: %w", err)
	}

	if attempts < limiter.maxAttempts {
		return nil
	}

	remaining, err := limiter.client.TTL(context, redisKey).Result()
	if err != nil || remaining <= 0 {
		remaining = limiter.window
	}

	return apperr.RateLimited(int(math.Ceil(remaining.Seconds())))
}

// Fail increments the failure counter, starting the window on the first failure.
func (limiter *RedisAttemptLimiter) Fail(context context.Context, key string) error {
	redisKey := constants.RedisPrefixLoginAttempts + key

	attempts, err := limiter.client.Incr(context, redisKey).Result()
	if err != nil {
		return fmt.Errorf("redis_login_attempts_incr_failed: %w", err)
	}

	if attempts == 1 {
		if err := limiter.client.Expire(context, redisKey, limiter.window).Err(); err != nil {
			return fmt.Errorf("redis_login_attempts_expire_failed: %w", err)
		}
	}

	return nil
}

// Reset deletes the failure counter.
func (limiter *RedisAttemptLimiter) Reset(context context.Context, key string) error {
	if err := limiter.client.Del(context, constants.RedisPrefixLoginAttempts+key).Err(); err != nil {
		return fmt.Errorf("redis_login_attempts_reset_failed: %w", err)
	}
	return nil
}
