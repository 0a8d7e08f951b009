package imageproxy

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCacheMaxMB is returned when CacheMaxMB is not positive
	ErrInvalidCacheMaxMB = errors.New("CacheMaxMB must be positive")
	// ErrInvalidFetchTimeout is returned when FetchTimeout is not positive
	ErrInvalidFetchTimeout = errors.New("FetchTimeout must be positive")
	// ErrInvalidMaxSourceSize is returned when MaxSourceSizeMB is not positive
	ErrInvalidMaxSourceSize = errors.New("MaxSourceSizeMB must be positive")
	// ErrMissingCachePath is returned when CachePath is empty while Enabled is true
	ErrMissingCachePath = errors.New("CachePath is required when proxy is enabled")
	// ErrInvalidCacheTTL is returned when CacheTTLDays is negative
	ErrInvalidCacheTTL = errors.New("CacheTTLDays cannot be negative")
)

// Config holds the configuration for the image proxy.
type Config struct {
	// Origin is where the backend serves /img/{folder}/{name}, e.g. http://localhost:8080.
	Origin    string
	CachePath string
	// CleanupInterval is how often TTL and LRU cleanup runs. Zero disables it.
	CleanupInterval time.Duration
	FetchTimeout    time.Duration
	CacheMaxMB      int
	// CacheTTLDays of 0 leaves only LRU eviction.
	CacheTTLDays    int
	MaxSourceSizeMB int
	Enabled         bool
}

// Validate checks the configuration for invalid values. Numeric limits are
// checked even when the proxy is disabled.
func (c Config) Validate() error {
	if c.CacheMaxMB <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCacheMaxMB, c.CacheMaxMB)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidFetchTimeout, c.FetchTimeout)
	}
	if c.MaxSourceSizeMB <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxSourceSize, c.MaxSourceSizeMB)
	}
	if c.CacheTTLDays < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCacheTTL, c.CacheTTLDays)
	}
	if c.Enabled && c.CachePath == "" {
		return ErrMissingCachePath
	}
	return nil
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		CachePath:       "/var/cache/welog/images",
		CacheMaxMB:      512,
		CacheTTLDays:    30,
		CleanupInterval: time.Hour,
		FetchTimeout:    15 * time.Second,
		MaxSourceSizeMB: 10,
	}
}
