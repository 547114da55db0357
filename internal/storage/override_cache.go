package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/r-sadik/deliverywindow/internal/model"
)

const (
	overrideCacheTTL = 5 * time.Minute

	// Cached for absent override rows so storefront traffic for plain
	// products does not hit Postgres on every request.
	overrideCacheMiss = "null"
)

// OverrideCache is a read-through redis cache in front of the
// product-override table. A nil redis client degrades to plain reads.
type OverrideCache struct {
	store  *Store
	client *redis.Client
	logger *slog.Logger
}

func NewOverrideCache(store *Store, client *redis.Client, logger *slog.Logger) *OverrideCache {
	return &OverrideCache{store: store, client: client, logger: logger}
}

func overrideCacheKey(shop, productID string) string {
	return "overrides:" + shop + ":" + productID
}

func (c *OverrideCache) GetOverrides(ctx context.Context, shop, productID string) (*model.ProductOverrides, error) {
	if c.client == nil {
		return c.store.GetOverrides(ctx, shop, productID)
	}

	key := overrideCacheKey(shop, productID)
	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if cached == overrideCacheMiss {
			return nil, nil
		}
		var o model.ProductOverrides
		if err := json.Unmarshal([]byte(cached), &o); err == nil {
			return &o, nil
		}
		// Corrupt entry; fall through and repopulate.
	case err != redis.Nil:
		c.logger.Warn("override cache read failed", "error", err)
	}

	o, err := c.store.GetOverrides(ctx, shop, productID)
	if err != nil {
		return nil, err
	}

	payload := overrideCacheMiss
	if o != nil {
		if raw, err := json.Marshal(o); err == nil {
			payload = string(raw)
		}
	}
	if err := c.client.Set(ctx, key, payload, overrideCacheTTL).Err(); err != nil {
		c.logger.Warn("override cache write failed", "error", err)
	}
	return o, nil
}

// Invalidate drops the cached entry after a products/update webhook so the
// next storefront read sees the fresh override set.
func (c *OverrideCache) Invalidate(ctx context.Context, shop, productID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, overrideCacheKey(shop, productID)).Err(); err != nil {
		c.logger.Warn("override cache invalidate failed", "error", err)
	}
}
