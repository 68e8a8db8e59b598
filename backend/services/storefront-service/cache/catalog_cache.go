package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	CatalogPagePrefix = "catalog:v:"
	CatalogVersionKey = "catalog:version"

	DefaultCatalogTTL = 5 * time.Minute
)

// CatalogCache caches storefront listing pages. Invalidation bumps a version
// number that is part of every page key, so stale pages simply stop being read
// and expire on their own. A nil *CatalogCache is a permanent miss.
type CatalogCache struct {
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewCatalogCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{redis: client, ttl: ttl, log: log}
}

func (c *CatalogCache) GetPage(ctx context.Context, page, limit int) (*models.ProductPage, bool) {
	if c == nil {
		return nil, false
	}
	version, err := c.version(ctx)
	if err != nil {
		return nil, false
	}

	data, err := c.redis.Get(ctx, pageKey(version, page, limit)).Bytes()
	if err != nil {
		return nil, false
	}

	var result models.ProductPage
	if err := json.Unmarshal(data, &result); err != nil {
		c.log.Warn("Failed to unmarshal cached catalog page", zap.Error(err))
		return nil, false
	}
	return &result, true
}

func (c *CatalogCache) SetPage(ctx context.Context, page, limit int, result *models.ProductPage) error {
	if c == nil {
		return nil
	}
	version, err := c.version(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal catalog page: %w", err)
	}
	return c.redis.Set(ctx, pageKey(version, page, limit), data, c.ttl).Err()
}

// SetPageAsync caches in the background so a slow Redis never delays a response.
func (c *CatalogCache) SetPageAsync(page, limit int, result *models.ProductPage) {
	if c == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.SetPage(ctx, page, limit, result); err != nil {
			c.log.Warn("Failed to cache catalog page", zap.Error(err))
		}
	}()
}

// Invalidate drops every cached page at once.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	v, err := c.redis.Incr(ctx, CatalogVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	c.log.Debug("Catalog cache invalidated", zap.Int64("version", v))
	return nil
}

func (c *CatalogCache) version(ctx context.Context) (int64, error) {
	v, err := c.redis.Get(ctx, CatalogVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SetNX so two first readers agree on the starting version.
		if err := c.redis.SetNX(ctx, CatalogVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.redis.Get(ctx, CatalogVersionKey).Int64()
	}
	return v, err
}

func pageKey(version int64, page, limit int) string {
	return fmt.Sprintf("%s%d:p:%d:l:%d", CatalogPagePrefix, version, page, limit)
}
