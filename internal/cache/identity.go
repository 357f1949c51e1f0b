package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// identityCachePrefix is the Redis key prefix for known token subjects.
	identityCachePrefix = "identity:user:"
	// identityCacheTTL bounds how long a positive existence check is trusted.
	identityCacheTTL = 5 * time.Minute
)

func identityKey(userID string) string {
	return identityCachePrefix + userID
}

// UserKnown reports whether userID was recently confirmed to exist.
// A cache miss is (false, nil). Only positive results are cached because
// accounts are never deleted.
func (c *Cache) UserKnown(ctx context.Context, userID string) (bool, error) {
	err := c.client.Get(ctx, identityKey(userID)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("get identity cache: %w", err)
	}
}

// RememberUser records that userID exists.
func (c *Cache) RememberUser(ctx context.Context, userID string) error {
	if err := c.client.Set(ctx, identityKey(userID), "1", identityCacheTTL).Err(); err != nil {
		return fmt.Errorf("set identity cache: %w", err)
	}
	return nil
}

// ForgetUser drops a cached existence check.
func (c *Cache) ForgetUser(ctx context.Context, userID string) error {
	return c.client.Del(ctx, identityKey(userID)).Err()
}
