// Package cache provides the response cache used by the outbound request
// client: a go-cache in-memory TTL tier in front of the SQLite-backed
// persistent tier. Enhancement results and image payloads are cacheable;
// text generation is not cached (creative variance is the point).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/store"
)

// Cacher defines the caching interface.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// TwoTier implements Cacher with a hot in-memory tier over an optional
// persistent tier. The memory tier absorbs repeat lookups within a session;
// the persistent tier survives restarts.
type TwoTier struct {
	mem        *gocache.Cache
	persistent store.CacheStore // may be nil
}

// New creates a TwoTier cache. persistent may be nil for memory-only
// operation.
func New(memoryTTL time.Duration, persistent store.CacheStore) *TwoTier {
	if memoryTTL <= 0 {
		memoryTTL = 30 * time.Minute
	}
	return &TwoTier{
		mem:        gocache.New(memoryTTL, 2*memoryTTL),
		persistent: persistent,
	}
}

func (c *TwoTier) GetCache(ctx context.Context, key string) ([]byte, bool) {
	if v, hit := c.mem.Get(key); hit {
		if b, ok := v.([]byte); ok {
			return b, true
		}
	}

	if c.persistent != nil {
		if b, hit := c.persistent.GetCache(ctx, key); hit {
			c.mem.Set(key, b, gocache.DefaultExpiration)
			return b, true
		}
	}
	return nil, false
}

func (c *TwoTier) SetCache(ctx context.Context, key string, val []byte) error {
	c.mem.Set(key, val, gocache.DefaultExpiration)
	if c.persistent != nil {
		return c.persistent.SetCache(ctx, key, val)
	}
	return nil
}

// Key builds a stable cache key from request parts.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
