package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/dataset"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/metrics"
)

type cacheEntry struct {
	ds      *dataset.Dataset
	modTime time.Time
	size    int64
}

func (e *cacheEntry) matches(info os.FileInfo) bool {
	return info != nil && e.modTime.Equal(info.ModTime()) && e.size == info.Size()
}

// DatasetCache memoizes loaded datasets per source file. An entry stays valid
// while the file's modification time and size are unchanged, or until it is
// invalidated explicitly. If the file can no longer be stat'ed the entry keeps
// being served. Failed loads are never cached.
type DatasetCache struct {
	mu             sync.RWMutex
	entries        map[string]*cacheEntry
	group          singleflight.Group
	reloadOnChange bool
	loadOpts       []dataset.Option
	logger         *slog.Logger
	metrics        *metrics.Manager

	hits   atomic.Int64
	misses atomic.Int64
}

type CacheOption func(*DatasetCache)

// WithReloadOnChange(false) pins the first successful load of a source for the
// lifetime of the cache.
func WithReloadOnChange(enabled bool) CacheOption {
	return func(c *DatasetCache) {
		c.reloadOnChange = enabled
	}
}

func WithLoadOptions(opts ...dataset.Option) CacheOption {
	return func(c *DatasetCache) {
		c.loadOpts = append(c.loadOpts, opts...)
	}
}

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *DatasetCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithCacheMetrics(m *metrics.Manager) CacheOption {
	return func(c *DatasetCache) {
		c.metrics = m
	}
}

func NewDatasetCache(opts ...CacheOption) *DatasetCache {
	c := &DatasetCache{
		entries:        make(map[string]*cacheEntry),
		reloadOnChange: true,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.loadOpts = append(c.loadOpts, dataset.WithLogger(c.logger))
	return c
}

// Get returns the dataset for path, loading it at most once per file version
// even when called concurrently.
func (c *DatasetCache) Get(ctx context.Context, path string) (*dataset.Dataset, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}

	var (
		info    os.FileInfo
		statErr error
	)
	if c.reloadOnChange {
		info, statErr = os.Stat(key)
	}

	c.mu.RLock()
	entry := c.entries[key]
	c.mu.RUnlock()

	if entry != nil && (!c.reloadOnChange || statErr != nil || entry.matches(info)) {
		if statErr != nil {
			// The source vanished or is unreadable; keep serving the last good load.
			c.logger.WarnContext(ctx, "dataset source unavailable, serving cached copy",
				"source", key, "error", statErr)
		}
		c.hits.Add(1)
		c.metrics.CacheHit()
		return entry.ds, nil
	}

	c.misses.Add(1)
	c.metrics.CacheMiss()

	flightKey := key
	if info != nil {
		flightKey = fmt.Sprintf("%s|%d|%d", key, info.ModTime().UnixNano(), info.Size())
	}
	v, err, shared := c.group.Do(flightKey, func() (any, error) {
		return c.load(ctx, key, info)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "dataset load shared", "source", key)
	}
	return v.(*dataset.Dataset), nil
}

func (c *DatasetCache) load(ctx context.Context, key string, info os.FileInfo) (*dataset.Dataset, error) {
	// A flight for this version may have finished since the lookup in Get.
	c.mu.RLock()
	entry := c.entries[key]
	c.mu.RUnlock()
	if entry != nil && (!c.reloadOnChange || entry.matches(info)) {
		return entry.ds, nil
	}

	start := time.Now()
	ds, err := dataset.Load(ctx, key, c.loadOpts...)
	elapsed := time.Since(start)

	if err != nil {
		result := metrics.LoadError
		if errors.Is(err, dataset.ErrNotFound) {
			result = metrics.LoadNotFound
		}
		c.metrics.ObserveDatasetLoad(result, elapsed)
		c.logger.WarnContext(ctx, "dataset load failed", "source", key, "error", err)
		return nil, err
	}

	c.metrics.ObserveDatasetLoad(metrics.LoadOK, elapsed)
	c.metrics.SetDatasetRows(ds.Len(), ds.Dropped)

	c.mu.Lock()
	c.entries[key] = &cacheEntry{ds: ds, modTime: ds.ModTime, size: ds.Size}
	c.mu.Unlock()
	return ds, nil
}

// Invalidate drops the cached dataset for path; the next Get reloads it.
func (c *DatasetCache) Invalidate(path string) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *DatasetCache) InvalidateAll() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

func (c *DatasetCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
