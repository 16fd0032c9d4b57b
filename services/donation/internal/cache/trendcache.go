package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/foodshare/foodshare/services/donation/internal/donation"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "foodshare:trend:"
	defaultTrendTTL  = 30 * time.Second
)

// TrendCache keeps computed weekly trends in Redis so that dashboard reloads
// within the TTL do not rescan the donations collection.
type TrendCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    aqm.Logger
}

// NewTrendCache returns nil when cache.redis.addr is not configured.
func NewTrendCache(config *aqm.Config, logger aqm.Logger) (*TrendCache, error) {
	addr, _ := config.GetString("cache.redis.addr")
	if addr == "" {
		return nil, nil
	}
	password, _ := config.GetString("cache.redis.password")

	ttl := defaultTrendTTL
	if raw, _ := config.GetString("cache.trend.ttl"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid cache.trend.ttl %q: %w", raw, err)
		}
		ttl = parsed
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	c := NewTrendCacheWithClient(client, "", ttl)
	if logger != nil {
		c.logger = logger
	}
	return c, nil
}

func NewTrendCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *TrendCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultTrendTTL
	}
	return &TrendCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    aqm.NewNoopLogger(),
	}
}

func (c *TrendCache) Start(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Get and Set fail per call while Redis is down; startup goes on.
	if err := c.client.Ping(pingCtx).Err(); err != nil {
		c.logger.Error("Redis trend cache unreachable, continuing without it", "error", err)
		return nil
	}
	c.logger.Infof("Connected to Redis trend cache, ttl: %s", c.ttl)
	return nil
}

func (c *TrendCache) Stop(ctx context.Context) error {
	return c.client.Close()
}

// Get returns nil, nil on a miss.
func (c *TrendCache) Get(ctx context.Context, key string) (*donation.Trend, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read trend: %w", err)
	}

	var t donation.Trend
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode cached trend: %w", err)
	}
	return &t, nil
}

func (c *TrendCache) Set(ctx context.Context, key string, t donation.Trend) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode trend: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store trend: %w", err)
	}
	return nil
}

var _ donation.TrendCache = (*TrendCache)(nil)
