package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/contactkeval/option-scan/internal/logger"
	"github.com/contactkeval/option-scan/internal/scan"
)

// spotTTL keeps cached spot quotes fresher than chains; a stale spot
// skews every derived metric.
const spotTTL = time.Minute

// cachedProvider decorates another Provider with a redis cache so that
// repeated interactive scans against the same ticker/expiration do not
// re-fetch. Cache failures degrade to the inner provider, never to an
// error.
type cachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedProvider wraps inner with a redis cache at redisURL
// (redis://host:port/db). ttl bounds chain and expiration entries.
func NewCachedProvider(inner Provider, redisURL string, ttl time.Duration) (Provider, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &cachedProvider{
		inner: inner,
		rdb:   redis.NewClient(opt),
		ttl:   ttl,
	}, nil
}

// lookup fills dest from the cache, or computes it with fetch and stores
// the result. dest must be a pointer to a JSON-round-trippable value.
func (c *cachedProvider) lookup(key string, ttl time.Duration, dest any, fetch func() (any, error)) error {
	ctx := context.Background()
	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if err := json.Unmarshal([]byte(raw), dest); err == nil {
			logger.Tracef("cache hit %s", key)
			return nil
		}
	}

	val, err := fetch()
	if err != nil {
		return err
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		logger.Debugf("cache store %s failed: %v", key, err)
	}
	return json.Unmarshal(b, dest)
}

func (c *cachedProvider) Expirations(ticker string) ([]time.Time, error) {
	var out []time.Time
	err := c.lookup("exp:"+ticker, c.ttl, &out, func() (any, error) {
		return c.inner.Expirations(ticker)
	})
	return out, err
}

func (c *cachedProvider) Spot(ticker string) (float64, error) {
	var out float64
	err := c.lookup("spot:"+ticker, spotTTL, &out, func() (any, error) {
		return c.inner.Spot(ticker)
	})
	return out, err
}

func (c *cachedProvider) Chain(ticker string, expiry time.Time, side scan.Side) ([]scan.Row, error) {
	key := fmt.Sprintf("chain:%s:%s:%s", ticker, expiry.Format("2006-01-02"), side)
	var out []scan.Row
	err := c.lookup(key, c.ttl, &out, func() (any, error) {
		return c.inner.Chain(ticker, expiry, side)
	})
	return out, err
}
