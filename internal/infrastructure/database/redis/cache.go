package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/crawlmeter/crawlmeter/internal/domain/content"
	"github.com/crawlmeter/crawlmeter/internal/infrastructure/monitoring/logging"
	"github.com/crawlmeter/crawlmeter/pkg/errors"
)

const (
	defaultPrefix = "crawlmeter"
	defaultTTL    = 6 * time.Hour
)

// BundleCache stores extracted feature bundles in Redis, keyed by the
// extractor's content hash. It implements content.BundleCache: a miss is
// reported as (nil, nil), never as an error.
type BundleCache struct {
	rdb    redis.Cmdable
	logger logging.Logger
	prefix string
	ttl    time.Duration
	jitter func(time.Duration) time.Duration
	group  singleflight.Group
}

// BundleCacheOption customises a BundleCache.
type BundleCacheOption func(*BundleCache)

// WithPrefix overrides the key namespace prefix.
func WithPrefix(prefix string) BundleCacheOption {
	return func(c *BundleCache) { c.prefix = prefix }
}

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) BundleCacheOption {
	return func(c *BundleCache) { c.ttl = ttl }
}

// NewBundleCache wraps a Redis client as a feature bundle cache.
func NewBundleCache(rdb redis.Cmdable, logger logging.Logger, opts ...BundleCacheOption) *BundleCache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c := &BundleCache{
		rdb:    rdb,
		logger: logger.Named("bundlecache"),
		prefix: defaultPrefix,
		ttl:    defaultTTL,
		jitter: jitterTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *BundleCache) fullKey(key string) string {
	return c.prefix + ":bundle:" + key
}

// jitterTTL spreads expirations by +/- 10% so entries written together do
// not all expire in the same instant.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	return ttl + time.Duration(float64(ttl)*0.1*(rand.Float64()*2-1))
}

// Get fetches a cached bundle. Concurrent reads of the same key are
// collapsed into a single round trip.
func (c *BundleCache) Get(ctx context.Context, key string) (*content.FeatureBundle, error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		data, err := c.rdb.Get(ctx, c.fullKey(key)).Bytes()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read cached bundle")
		}
		var bundle content.FeatureBundle
		if err := json.Unmarshal(data, &bundle); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode cached bundle")
		}
		return &bundle, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*content.FeatureBundle), nil
}

// Set stores a bundle under the given key with the configured TTL.
func (c *BundleCache) Set(ctx context.Context, key string, bundle content.FeatureBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode bundle")
	}
	if err := c.rdb.Set(ctx, c.fullKey(key), data, c.jitter(c.ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to store bundle")
	}
	return nil
}

// Invalidate removes cached bundles so the next extraction recomputes them.
func (c *BundleCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.fullKey(k)
	}
	if err := c.rdb.Del(ctx, fullKeys...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to invalidate bundles")
	}
	return nil
}
