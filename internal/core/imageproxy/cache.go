package imageproxy

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

var (
	// ErrEmptyParameter is returned when a cache key component is empty
	ErrEmptyParameter = errors.New("required parameter is empty")
	// ErrInvalidCacheBasePath is returned when the cache base path is empty
	ErrInvalidCacheBasePath = errors.New("cache base path cannot be empty")
)

// Cache stores processed images keyed by (preset, folder, name).
type Cache interface {
	// Get returns the cached bytes and whether they were found.
	Get(preset, folder, name string) ([]byte, bool, error)
	Set(preset, folder, name string, data []byte) error
	Delete(preset, folder, name string) error
	// Cleanup runs TTL cleanup then LRU eviction and returns the number of entries removed.
	Cleanup() (int, error)
}

// DiskCache implements Cache on the filesystem as {basePath}/{preset}/{folder}/{name}.
// File mtimes double as last-access times for LRU eviction.
type DiskCache struct {
	logger   *slog.Logger
	basePath string
	maxBytes int64
	ttl      time.Duration
}

// NewDiskCache creates a DiskCache. ttlDays of 0 disables TTL cleanup.
func NewDiskCache(basePath string, maxSizeMB, ttlDays int, logger *slog.Logger) (*DiskCache, error) {
	if basePath == "" {
		return nil, ErrInvalidCacheBasePath
	}
	if maxSizeMB <= 0 {
		return nil, ErrInvalidCacheMaxMB
	}
	if ttlDays < 0 {
		return nil, ErrInvalidCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DiskCache{
		logger:   logger,
		basePath: basePath,
		maxBytes: int64(maxSizeMB) << 20,
		ttl:      time.Duration(ttlDays) * 24 * time.Hour,
	}, nil
}

func (c *DiskCache) path(preset, folder, name string) (string, error) {
	if preset == "" || folder == "" || name == "" {
		return "", ErrEmptyParameter
	}
	return filepath.Join(c.basePath,
		sanitizePathComponent(preset),
		sanitizePathComponent(folder),
		sanitizePathComponent(name)), nil
}

// Get reads a cached image and bumps its mtime. A miss is (nil, false, nil).
func (c *DiskCache) Get(preset, folder, name string) ([]byte, bool, error) {
	path, err := c.path(preset, folder, name)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		c.logger.Warn("failed to touch cached image", "path", path, "error", err)
	}
	return data, true, nil
}

// Set writes through a temp file and a rename so readers never see partial files.
func (c *DiskCache) Set(preset, folder, name string, data []byte) error {
	path, err := c.path(preset, folder, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Delete removes a cached image. Missing entries are not an error.
func (c *DiskCache) Delete(preset, folder, name string) error {
	path, err := c.path(preset, folder, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

type cacheEntry struct {
	modTime time.Time
	path    string
	size    int64
}

func (c *DiskCache) scan() ([]cacheEntry, int64, error) {
	var (
		entries []cacheEntry
		total   int64
	)
	err := filepath.WalkDir(c.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			c.logger.Warn("skipping unreadable cache entry", "path", path, "error", err)
			return nil
		}
		entries = append(entries, cacheEntry{path: path, size: info.Size(), modTime: info.ModTime()})
		total += info.Size()
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, 0, err
	}
	return entries, total, nil
}

// Size returns the current cache size in bytes.
func (c *DiskCache) Size() (int64, error) {
	_, total, err := c.scan()
	return total, err
}

// EvictLRU removes the least recently used entries until the cache fits its limit.
func (c *DiskCache) EvictLRU() (int, error) {
	entries, total, err := c.scan()
	if err != nil || total <= c.maxBytes {
		return 0, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	removed := 0
	for _, e := range entries {
		if total <= c.maxBytes {
			break
		}
		if err := os.Remove(e.path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				c.logger.Warn("failed to evict cached image", "path", e.path, "error", err)
			}
			continue
		}
		total -= e.size
		removed++
	}
	if removed > 0 {
		c.logger.Info("image cache eviction completed", "entries_removed", removed, "size_bytes", total)
	}
	return removed, nil
}

// CleanExpired removes entries not accessed within the TTL.
func (c *DiskCache) CleanExpired() (int, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	entries, _, err := c.scan()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-c.ttl)
	removed := 0
	for _, e := range entries {
		if e.modTime.After(cutoff) {
			continue
		}
		if err := os.Remove(e.path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				c.logger.Warn("failed to remove expired image", "path", e.path, "error", err)
			}
			continue
		}
		removed++
	}
	return removed, nil
}

// Cleanup runs TTL cleanup, then LRU eviction if the cache is still too big.
func (c *DiskCache) Cleanup() (int, error) {
	expired, err := c.CleanExpired()
	if err != nil {
		return 0, err
	}
	evicted, err := c.EvictLRU()
	return expired + evicted, err
}

// StartCleanupJob runs Cleanup every interval until the returned cancel func
// is called. A non-positive interval starts nothing.
func (c *DiskCache) StartCleanupJob(interval time.Duration) context.CancelFunc {
	if interval <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed, err := c.Cleanup(); err != nil {
					c.logger.Error("image cache cleanup failed", "error", err)
				} else if removed > 0 {
					c.logger.Info("image cache cleanup completed", "entries_removed", removed)
				}
			}
		}
	}()
	return cancel
}
