// Package store provides the in-memory forecast cache that backs the
// predict proxy endpoint.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BangBK2510/Digital-Map-Project/internal/forecast"
	"github.com/BangBK2510/Digital-Map-Project/internal/geo"
)

// ErrNotFound is returned when no fresh forecast is cached for a location.
var ErrNotFound = errors.New("no cached forecast for location")

// Key builds the cache key for a coordinate pair. Coordinates are rounded
// to four decimals (~11 m) so jitter from different callers still hits the
// same entry.
func Key(lat, lon float64) string {
	return fmt.Sprintf("%.4f:%.4f", lat, lon)
}

type cacheEntry struct {
	record   forecast.Record
	cachedAt time.Time
}

// ForecastCache is a concurrency-safe in-memory cache of forecast records
// with age-based expiry.
type ForecastCache struct {
	mu     sync.RWMutex
	data   map[string]cacheEntry
	maxAge time.Duration
}

// NewForecastCache creates a cache. maxAge <= 0 means entries never expire.
func NewForecastCache(maxAge time.Duration) *ForecastCache {
	return &ForecastCache{
		data:   make(map[string]cacheEntry),
		maxAge: maxAge,
	}
}

// Put stores a record under the given key.
func (c *ForecastCache) Put(key string, record forecast.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheEntry{record: record, cachedAt: time.Now()}
}

// Get returns a fresh cached record or ErrNotFound.
func (c *ForecastCache) Get(key string) (forecast.Record, error) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return forecast.Record{}, ErrNotFound
	}
	if c.maxAge > 0 && time.Since(entry.cachedAt) > c.maxAge {
		return forecast.Record{}, ErrNotFound
	}
	return entry.record, nil
}

// Purge drops expired entries and returns how many were removed.
func (c *ForecastCache) Purge() int {
	if c.maxAge <= 0 {
		return 0
	}

	cutoff := time.Now().Add(-c.maxAge)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.data {
		if entry.cachedAt.Before(cutoff) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries, expired ones included.
func (c *ForecastCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// CachedClient wraps a forecast client with the cache: hits are served
// locally, misses go upstream and populate the cache.
type CachedClient struct {
	inner forecast.PredictClient
	cache *ForecastCache
}

// NewCachedClient creates a caching wrapper around a forecast client.
func NewCachedClient(inner forecast.PredictClient, cache *ForecastCache) *CachedClient {
	return &CachedClient{inner: inner, cache: cache}
}

// Predict serves from the cache when possible, otherwise fetches upstream
// and caches the result.
func (c *CachedClient) Predict(ctx context.Context, loc geo.Location) (forecast.Record, error) {
	key := Key(loc.Lat, loc.Lon)

	if rec, err := c.cache.Get(key); err == nil {
		return rec, nil
	}

	rec, err := c.inner.Predict(ctx, loc)
	if err != nil {
		return forecast.Record{}, err
	}

	c.cache.Put(key, rec)
	return rec, nil
}
