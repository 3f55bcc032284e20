// Package settings exposes runtime settings stored in the database through a
// small read-through cache with explicit invalidation.
package settings

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
)

// Well-known setting keys.
const (
	KeyPaymentTTLMinutes = "payment_ttl_minutes"
)

// Cache serves settings reads from memory until Invalidate is called. There
// is no TTL; writers are expected to invalidate after changing a value.
type Cache struct {
	repo   application.SettingsRepository
	logger *slog.Logger

	mu     sync.RWMutex
	values map[string]string
}

func NewCache(repo application.SettingsRepository, logger *slog.Logger) *Cache {
	return &Cache{
		repo:   repo,
		logger: logger,
		values: make(map[string]string),
	}
}

// Get returns the setting value, falling back to def when the key is absent
// or the database read fails.
func (c *Cache) Get(ctx context.Context, key, def string) string {
	c.mu.RLock()
	value, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return value
	}

	value, err := c.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, persistence.ErrSettingNotFound) {
			c.logger.Warn("failed to read setting, using default", "key", key, "error", err)
		}
		return def
	}

	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
	return value
}

// GetInt is Get with integer parsing; malformed values fall back to def.
func (c *Cache) GetInt(ctx context.Context, key string, def int) int {
	raw := c.Get(ctx, key, strconv.Itoa(def))
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.logger.Warn("malformed integer setting, using default", "key", key, "value", raw)
		return def
	}
	return n
}

// Set writes the value through to the database and refreshes the cache.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	if err := c.repo.Set(ctx, key, value); err != nil {
		return err
	}
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
	return nil
}

// Invalidate drops every cached value; the next Get hits the database.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.values = make(map[string]string)
	c.mu.Unlock()
}
