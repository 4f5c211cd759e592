package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultCacheTTL = 10 * time.Minute

// Cache stores prepared-ready banks by subject. A miss returns (nil, nil).
type Cache interface {
	Get(ctx context.Context, subjectID string) ([]Template, error)
	Set(ctx context.Context, subjectID string, templates []Template) error
}

// RedisCache keeps banks as JSON blobs in Redis to offload the backing store.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl, prefix: "quizbank"}
}

func (c *RedisCache) key(subjectID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, subjectID)
}

func (c *RedisCache) Get(ctx context.Context, subjectID string) ([]Template, error) {
	data, err := c.client.Get(ctx, c.key(subjectID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var templates []Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (c *RedisCache) Set(ctx context.Context, subjectID string, templates []Template) error {
	data, err := json.Marshal(templates)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(subjectID), data, c.ttl).Err()
}

// Cached decorates a Provider with a bank cache. Cache errors never fail a lookup.
type Cached struct {
	next   Provider
	cache  Cache
	logger zerolog.Logger
}

var _ Provider = (*Cached)(nil)

func NewCached(next Provider, cache Cache, logger zerolog.Logger) *Cached {
	return &Cached{
		next:   next,
		cache:  cache,
		logger: logger.With().Str("component", "bank_cache").Logger(),
	}
}

// Subjects is not cached; subject lists are small and change with the store.
func (c *Cached) Subjects(ctx context.Context) ([]Subject, error) {
	return c.next.Subjects(ctx)
}

func (c *Cached) Bank(ctx context.Context, subjectID string) ([]Template, error) {
	cached, err := c.cache.Get(ctx, subjectID)
	if err != nil {
		c.logger.Warn().Err(err).Str("subject", subjectID).Msg("bank cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	templates, err := c.next.Bank(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, subjectID, templates); err != nil {
		c.logger.Warn().Err(err).Str("subject", subjectID).Msg("bank cache write failed")
	}
	return templates, nil
}
