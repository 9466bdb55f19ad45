package triage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache memoizes LLM classifications in Redis so repeated complaints skip the
// external call. Misses and Redis failures are indistinguishable to callers:
// both mean "ask the model".
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache wraps a Redis client. A zero ttl stores entries without expiry.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if rdb == nil {
		panic("triage: redis client required")
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(complaint string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(complaint)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "triage:spec:" + hex.EncodeToString(sum[:16])
}

// Get returns the cached specialization for a complaint, if any.
func (c *Cache) Get(ctx context.Context, complaint string) (Specialization, bool) {
	val, err := c.rdb.Get(ctx, cacheKey(complaint)).Result()
	if err != nil {
		return "", false
	}
	spec := Specialization(val)
	for _, known := range All() {
		if spec == known {
			return spec, true
		}
	}
	return "", false
}

// Put stores a classification. Errors are dropped: the cache is advisory.
func (c *Cache) Put(ctx context.Context, complaint string, spec Specialization) {
	_ = c.rdb.Set(ctx, cacheKey(complaint), string(spec), c.ttl).Err()
}
