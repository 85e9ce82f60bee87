package cache

import (
	"context"
	"fmt"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/suchimauz/clinic-availability-engine/internal/config"
	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
)

// LRUCacheAdapter: кэш слотов в памяти процесса с ограничением размера и TTL
type LRUCacheAdapter struct {
	cache  *expirable.LRU[slotsKey, []domain.Slot]
	logger out.LoggerPort
}

var _ out.CachePort = (*LRUCacheAdapter)(nil)

func NewLRUCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*LRUCacheAdapter, error) {
	if cfg.Cache.SlotsSize <= 0 || cfg.Cache.TTL <= 0 {
		logger.Error("cache.init.failed", out.LogFields{
			"size": cfg.Cache.SlotsSize,
			"ttl":  cfg.Cache.TTL.String(),
		})
		return nil, fmt.Errorf("cache.init.failed: size %d, ttl %s", cfg.Cache.SlotsSize, cfg.Cache.TTL)
	}

	logger = logger.WithModule("LRUCacheAdapter")

	cache := expirable.NewLRU[slotsKey, []domain.Slot](cfg.Cache.SlotsSize, func(key slotsKey, _ []domain.Slot) {
		logger.Debug("cache.evicted", out.LogFields{
			"key": key.String(),
		})
	}, cfg.Cache.TTL)

	return &LRUCacheAdapter{
		cache:  cache,
		logger: logger,
	}, nil
}

func (c *LRUCacheAdapter) GetSlots(ctx context.Context, query domain.SlotsQuery) ([]domain.Slot, bool) {
	key := newSlotsKey(query)

	slots, exists := c.cache.Get(key)
	if !exists {
		c.logger.Debug("cache.get.miss", out.LogFields{
			"key": key.String(),
		})
		return nil, false
	}

	c.logger.Debug("cache.get.hit", out.LogFields{
		"key":        key.String(),
		"slotsCount": len(slots),
	})

	// Отдаем копию, чтобы вызывающий код не испортил запись в кэше
	return copySlots(slots), true
}

func (c *LRUCacheAdapter) StoreSlots(ctx context.Context, query domain.SlotsQuery, slots []domain.Slot) {
	key := newSlotsKey(query)

	c.logger.Debug("cache.store", out.LogFields{
		"key":        key.String(),
		"slotsCount": len(slots),
	})

	c.cache.Add(key, copySlots(slots))
}

func (c *LRUCacheAdapter) InvalidateClinicianSlots(ctx context.Context, clinicianID string) {
	removed := 0
	for _, key := range c.cache.Keys() {
		if key.clinicianID == clinicianID && c.cache.Remove(key) {
			removed++
		}
	}

	c.logger.Debug("cache.invalidate.clinician", out.LogFields{
		"clinicianId": clinicianID,
		"removed":     removed,
	})
}

func (c *LRUCacheAdapter) InvalidateAllSlots(ctx context.Context) {
	c.cache.Purge()

	c.logger.Debug("cache.invalidate.all", out.LogFields{})
}

func copySlots(slots []domain.Slot) []domain.Slot {
	result := make([]domain.Slot, len(slots))
	copy(result, slots)
	return result
}
