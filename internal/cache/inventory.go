package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blendi-remade/reve-studio/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	PostSourceKeyPrefix = "post:%d:source"
	PostTTL             = 30 * time.Minute
)

// PostSourceKey caches a post's root image. Posts are immutable and never
// deleted, so entries only expire.
func PostSourceKey(postID uint) string {
	return fmt.Sprintf(PostSourceKeyPrefix, postID)
}

// Aside implements cache-aside: dest is filled from Redis on a hit, otherwise
// fetch fills dest and the result is stored with ttl. Redis failures fall
// through to fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		// corrupt entry
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	if err := fetch(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}
