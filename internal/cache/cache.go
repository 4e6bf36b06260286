package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"educate/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is the caching contract shared by the in-memory and Redis providers.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
	Health(ctx context.Context) error
	Close() error
}

// New builds the cache provider named by the configuration.
func New(cfg *config.CacheConfig, logger *zap.Logger) (Cache, error) {
	switch cfg.Provider {
	case "redis":
		return newRedisCache(cfg, logger)
	case "memory", "":
		return newMemoryCache(logger), nil
	default:
		return nil, fmt.Errorf("unknown cache provider %q", cfg.Provider)
	}
}

// GetJSON fetches a cached value and unmarshals it into dest.
func GetJSON(ctx context.Context, c Cache, key string, dest interface{}) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON marshals value and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.Set(ctx, key, raw, ttl)
}

// ===============================
// MEMORY PROVIDER
// ===============================

type memoryItem struct {
	value     []byte
	counter   int64
	expiresAt time.Time
}

func (i *memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

type memoryCache struct {
	mu     sync.RWMutex
	items  map[string]*memoryItem
	logger *zap.Logger
	done   chan struct{}
}

func newMemoryCache(logger *zap.Logger) *memoryCache {
	c := &memoryCache{
		items:  make(map[string]*memoryItem),
		logger: logger,
		done:   make(chan struct{}),
	}
	go c.janitor()
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || item.expired(time.Now()) {
		return nil, false
	}
	return item.value, true
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	item := &memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.items, key)
		}
	}
	return nil
}

func (c *memoryCache) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	item, ok := c.items[key]
	if !ok || item.expired(now) {
		item = &memoryItem{}
		if ttl > 0 {
			item.expiresAt = now.Add(ttl)
		}
		c.items[key] = item
	}
	item.counter += delta
	return item.counter, nil
}

func (c *memoryCache) Health(ctx context.Context) error {
	return nil
}

func (c *memoryCache) Close() error {
	close(c.done)
	return nil
}

func (c *memoryCache) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, item := range c.items {
				if item.expired(now) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// ===============================
// REDIS PROVIDER
// ===============================

type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

func newRedisCache(cfg *config.CacheConfig, logger *zap.Logger) (*redisCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB != 0 {
		opts.DB = cfg.RedisDB
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis cache connected", zap.String("addr", opts.Addr))
	return &redisCache{client: client, logger: logger}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("Redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return raw, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCache) DeletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCache) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	count, err := r.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, err
	}
	// First increment creates the key; attach the window expiry then.
	if count == delta && ttl > 0 {
		r.client.Expire(ctx, key, ttl)
	}
	return count, nil
}

func (r *redisCache) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
