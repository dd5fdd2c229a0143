package service

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shhiivvaam/ecommerce-backend/internal/app/model"
	"github.com/shhiivvaam/ecommerce-backend/pkg/logger"
	"github.com/shhiivvaam/ecommerce-backend/pkg/redis"
)

const (
	settingsCacheKey      = "store:settings"
	settingsGenerationKey = "store:settings:generation"
)

// SettingsCache holds the store settings row between reads. Implementations
// treat backend failures as misses.
//
// A miss hands out the current generation. Set stores only if no Invalidate
// ran since then, so a reader that loaded the row before an admin write
// cannot put the old row back.
type SettingsCache interface {
	Get(ctx context.Context) (settings *model.StoreSettings, generation uint64, ok bool)
	Set(ctx context.Context, settings *model.StoreSettings, generation uint64)
	Invalidate(ctx context.Context)
}

type memorySettingsCache struct {
	mu         sync.RWMutex
	ttl        time.Duration
	now        func() time.Time
	value      *model.StoreSettings
	expiresAt  time.Time
	generation uint64
}

// NewMemorySettingsCache keeps the settings in process for ttl.
func NewMemorySettingsCache(ttl time.Duration) SettingsCache {
	return &memorySettingsCache{ttl: ttl, now: time.Now}
}

func (c *memorySettingsCache) Get(_ context.Context) (*model.StoreSettings, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.value == nil || !c.now().Before(c.expiresAt) {
		return nil, c.generation, false
	}
	copied := *c.value
	return &copied, c.generation, true
}

func (c *memorySettingsCache) Set(_ context.Context, settings *model.StoreSettings, generation uint64) {
	copied := *settings

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return
	}
	c.value = &copied
	c.expiresAt = c.now().Add(c.ttl)
}

func (c *memorySettingsCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	c.value = nil
	c.generation++
	c.mu.Unlock()
}

type redisSettingsCache struct {
	client goredis.Cmdable
	ttl    time.Duration
}

// NewRedisSettingsCache shares the settings between server instances so an
// admin write invalidates every replica at once.
func NewRedisSettingsCache(client goredis.Cmdable, ttl time.Duration) SettingsCache {
	return &redisSettingsCache{client: client, ttl: ttl}
}

func (c *redisSettingsCache) Get(ctx context.Context) (*model.StoreSettings, uint64, bool) {
	generation, err := redis.Generation(ctx, c.client, settingsGenerationKey)
	if err != nil {
		logger.Warn("Store settings cache generation read failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, 0, false
	}

	var settings model.StoreSettings
	found, err := redis.GetJSON(ctx, c.client, settingsCacheKey, &settings)
	if err != nil {
		logger.Warn("Store settings cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, generation, false
	}
	if !found {
		return nil, generation, false
	}
	return &settings, generation, true
}

func (c *redisSettingsCache) Set(ctx context.Context, settings *model.StoreSettings, generation uint64) {
	stored, err := redis.SetJSONIfGeneration(ctx, c.client, settingsCacheKey, settingsGenerationKey, generation, settings, c.ttl)
	if err != nil {
		logger.Warn("Store settings cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if !stored {
		logger.Debug("Store settings cache write skipped after invalidation", map[string]interface{}{
			"generation": generation,
		})
	}
}

func (c *redisSettingsCache) Invalidate(ctx context.Context) {
	if err := redis.Invalidate(ctx, c.client, settingsGenerationKey, settingsCacheKey); err != nil {
		logger.Warn("Store settings cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
