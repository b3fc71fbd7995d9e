package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed logins per username in Redis.
// Key format: login:fail:<username>
//
// The window starts at the first failure and is not extended by later ones.
// Once the count reaches max the username stays locked until the key expires.
// Locked puts a window back on a counter that lost its TTL.
type LoginThrottle struct {
	client redis.Cmdable
	max    int64
	window time.Duration
}

// NewLoginThrottle returns a throttle allowing max failures per window.
func NewLoginThrottle(client redis.Cmdable, max int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, max: int64(max), window: window}
}

// Locked reports how long the username remains locked, or zero if it is not.
func (t *LoginThrottle) Locked(ctx context.Context, username string) (time.Duration, error) {
	key := t.key(username)
	count, err := t.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("throttle lookup: %w", err)
	}
	if count < t.max {
		return 0, nil
	}

	ttl, err := t.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("throttle ttl: %w", err)
	}
	switch {
	case ttl > 0:
		return ttl, nil
	case ttl == -2:
		// expired between GET and TTL
		return 0, nil
	}

	// A failed EXPIRE after INCR leaves the counter without a TTL. Restart the
	// window so the lock cannot outlive it.
	if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
		return 0, fmt.Errorf("throttle repair expire: %w", err)
	}
	return t.window, nil
}

// RecordFailure increments the failure counter, starting the window on the first one.
func (t *LoginThrottle) RecordFailure(ctx context.Context, username string) error {
	key := t.key(username)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return fmt.Errorf("throttle expire: %w", err)
		}
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	if err := t.client.Del(ctx, t.key(username)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(username string) string {
	return "login:fail:" + username
}
