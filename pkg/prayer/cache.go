package prayer

import (
	"context"
	"fmt"
	"time"

	"github.com/korjavin/prayerbot/pkg/logger"
	"github.com/korjavin/prayerbot/pkg/storage"
	"github.com/pkg/errors"
)

// cacheTTL keeps a snapshot a little longer than the day it describes
const cacheTTL = 48 * time.Hour

// Store is the persistence the cache needs
type Store interface {
	Get(key string, value interface{}) error
	SetWithTTL(key string, value interface{}, ttl time.Duration) error
	List(prefix string) ([]string, error)
	Delete(key string) error
}

// Cache serves a schedule fetched earlier on the same calendar day
type Cache struct {
	source Source
	store  Store
	prefix string
	logger *logger.Logger
}

// CacheKeyPrefix builds the key prefix for one city and calculation method
func CacheKeyPrefix(city, country string, method int) string {
	return fmt.Sprintf("schedule:%s:%s:%d", city, country, method)
}

// NewCache wraps source with a same-day cache kept in store
func NewCache(source Source, store Store, prefix string) *Cache {
	return &Cache{
		source: source,
		store:  store,
		prefix: prefix,
		logger: logger.New("prayer-cache"),
	}
}

// Fetch returns the cached schedule for date, or fetches and caches it
func (c *Cache) Fetch(ctx context.Context, date time.Time) (Schedule, error) {
	key := c.key(date)

	var cached Schedule
	err := c.store.Get(key, &cached)
	switch {
	case err == nil && len(cached.Times) == len(names):
		c.logger.Debug("Using cached prayer times for %s", key)
		cached.Origin = OriginCache
		return cached, nil
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		c.logger.Warn("Failed to read cached prayer times %s: %v", key, err)
	}

	schedule, err := c.source.Fetch(ctx, date)
	if err != nil {
		return Schedule{}, err
	}

	if schedule.Origin == OriginAPI {
		if err := c.store.SetWithTTL(key, schedule, cacheTTL); err != nil {
			c.logger.Warn("Failed to cache prayer times %s: %v", key, err)
		} else {
			c.prune(key)
		}
	}
	return schedule, nil
}

// prune drops the snapshots of every other day
func (c *Cache) prune(keep string) {
	keys, err := c.store.List(c.prefix + ":")
	if err != nil {
		c.logger.Warn("Failed to list cached prayer times: %v", err)
		return
	}
	for _, key := range keys {
		if key == keep {
			continue
		}
		if err := c.store.Delete(key); err != nil {
			c.logger.Warn("Failed to drop cached prayer times %s: %v", key, err)
			continue
		}
		c.logger.Debug("Dropped cached prayer times %s", key)
	}
}

func (c *Cache) key(date time.Time) string {
	return c.prefix + ":" + date.Format("2006-01-02")
}
