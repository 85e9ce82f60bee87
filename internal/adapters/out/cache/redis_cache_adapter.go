package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suchimauz/clinic-availability-engine/internal/config"
	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
)

// Сколько ключей запрашивать за один SCAN
const redisScanCount = 500

// RedisCacheAdapter: общий кэш слотов для нескольких экземпляров сервиса.
// Ошибки Redis не ломают генерацию: промах кэша и запись в лог.
type RedisCacheAdapter struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger out.LoggerPort
}

var _ out.CachePort = (*RedisCacheAdapter)(nil)

func NewRedisCacheAdapter(ctx context.Context, cfg *config.Config, logger out.LoggerPort) (*RedisCacheAdapter, error) {
	if cfg.Cache.TTL <= 0 {
		return nil, fmt.Errorf("cache.init.failed: ttl %s", cfg.Cache.TTL)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("cache.redis.ping_failed", out.LogFields{
			"addr":  cfg.Redis.Addr,
			"error": err.Error(),
		})
		_ = rdb.Close()
		return nil, fmt.Errorf("cache.redis.ping_failed: %w", err)
	}

	return &RedisCacheAdapter{
		rdb:    rdb,
		ttl:    cfg.Cache.TTL,
		logger: logger.WithModule("RedisCacheAdapter"),
	}, nil
}

func (c *RedisCacheAdapter) GetSlots(ctx context.Context, query domain.SlotsQuery) ([]domain.Slot, bool) {
	key := newSlotsKey(query).String()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache.get.failed", out.LogFields{
				"key":   key,
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var slots []domain.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		c.logger.Warn("cache.get.decode_failed", out.LogFields{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}

	return slots, true
}

func (c *RedisCacheAdapter) StoreSlots(ctx context.Context, query domain.SlotsQuery, slots []domain.Slot) {
	key := newSlotsKey(query).String()

	data, err := json.Marshal(slots)
	if err != nil {
		c.logger.Warn("cache.store.encode_failed", out.LogFields{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache.store.failed", out.LogFields{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (c *RedisCacheAdapter) InvalidateClinicianSlots(ctx context.Context, clinicianID string) {
	c.deleteByPattern(ctx, clinicianSlotsPattern(clinicianID))
}

func (c *RedisCacheAdapter) InvalidateAllSlots(ctx context.Context) {
	c.deleteByPattern(ctx, allSlotsPattern())
}

func (c *RedisCacheAdapter) Close() error {
	return c.rdb.Close()
}

// deleteByPattern удаляет ключи через SCAN, чтобы не блокировать Redis командой KEYS
func (c *RedisCacheAdapter) deleteByPattern(ctx context.Context, pattern string) {
	var cursor uint64
	removed := 0

	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, redisScanCount).Result()
		if err != nil {
			c.logger.Warn("cache.invalidate.scan_failed", out.LogFields{
				"pattern": pattern,
				"error":   err.Error(),
			})
			return
		}

		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				c.logger.Warn("cache.invalidate.delete_failed", out.LogFields{
					"pattern": pattern,
					"error":   err.Error(),
				})
				return
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("cache.invalidate", out.LogFields{
		"pattern": pattern,
		"removed": removed,
	})
}
