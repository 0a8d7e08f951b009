// Package config loads the frontend configuration from the environment and
// an optional config file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"Welog/internal/core/comments"
	"Welog/internal/core/imageproxy"
	"Welog/internal/session"
)

// Store backends for client state.
const (
	BackendCookie   = "cookie"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is the full frontend configuration. Every field maps to an
// upper-case environment variable of the same name as its mapstructure tag.
type Config struct {
	APIURL        string `mapstructure:"api_url"`
	Port          string `mapstructure:"port"`
	CookieSecret  string `mapstructure:"cookie_secret"`
	StoreBackend  string `mapstructure:"store_backend"`
	DatabaseURL   string `mapstructure:"database_url"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	LogLevel      string `mapstructure:"log_level"`

	ImageProxyOrigin   string        `mapstructure:"image_proxy_origin"`
	ImageCachePath     string        `mapstructure:"image_cache_path"`
	ImageCleanup       time.Duration `mapstructure:"image_cleanup_interval"`
	ImageFetchTimeout  time.Duration `mapstructure:"image_fetch_timeout"`
	ClientStateIdle    time.Duration `mapstructure:"client_state_idle"`
	RedisDB            int           `mapstructure:"redis_db"`
	MaxCommentLevel    int           `mapstructure:"max_comment_level"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	ImageCacheMaxMB    int           `mapstructure:"image_cache_max_mb"`
	ImageCacheTTLDays  int           `mapstructure:"image_cache_ttl_days"`
	ImageMaxSourceMB   int           `mapstructure:"image_max_source_mb"`
	SecureCookies      bool          `mapstructure:"secure_cookies"`
	ImageProxyEnabled  bool          `mapstructure:"image_proxy_enabled"`
	SkipMigrations     bool          `mapstructure:"skip_migrations"`
}

func setDefaults(v *viper.Viper) {
	proxy := imageproxy.DefaultConfig()

	v.SetDefault("api_url", "http://localhost:8080/api/v1")
	v.SetDefault("port", "8081")
	v.SetDefault("cookie_secret", "")
	v.SetDefault("store_backend", BackendCookie)
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("client_state_idle", session.DefaultRedisTTL)
	v.SetDefault("max_comment_level", comments.DefaultMaxLevel)
	v.SetDefault("rate_limit_per_minute", 120)
	v.SetDefault("secure_cookies", false)
	v.SetDefault("skip_migrations", false)

	v.SetDefault("image_proxy_enabled", proxy.Enabled)
	v.SetDefault("image_proxy_origin", "")
	v.SetDefault("image_cache_path", proxy.CachePath)
	v.SetDefault("image_cache_max_mb", proxy.CacheMaxMB)
	v.SetDefault("image_cache_ttl_days", proxy.CacheTTLDays)
	v.SetDefault("image_cleanup_interval", proxy.CleanupInterval)
	v.SetDefault("image_fetch_timeout", proxy.FetchTimeout)
	v.SetDefault("image_max_source_mb", proxy.MaxSourceSizeMB)
}

// Load reads the configuration. file may be empty; environment variables
// override file values.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if cfg.ImageProxyOrigin == "" {
		cfg.ImageProxyOrigin = originOf(cfg.APIURL)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// originOf strips the path from an API URL, leaving scheme and host.
func originOf(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("API_URL is required")
	}
	if len(c.CookieSecret) < session.MinCookieSecretLength {
		return fmt.Errorf("COOKIE_SECRET must be at least %d characters", session.MinCookieSecretLength)
	}
	switch c.StoreBackend {
	case BackendCookie:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis store backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.MaxCommentLevel < 1 {
		return fmt.Errorf("MAX_COMMENT_LEVEL must be positive, got %d", c.MaxCommentLevel)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative, got %d", c.RateLimitPerMinute)
	}
	if err := c.ImageProxy().Validate(); err != nil {
		return fmt.Errorf("image proxy: %w", err)
	}
	return nil
}

// ImageProxy returns the image proxy section.
func (c *Config) ImageProxy() imageproxy.Config {
	return imageproxy.Config{
		Enabled:         c.ImageProxyEnabled,
		Origin:          c.ImageProxyOrigin,
		CachePath:       c.ImageCachePath,
		CacheMaxMB:      c.ImageCacheMaxMB,
		CacheTTLDays:    c.ImageCacheTTLDays,
		CleanupInterval: c.ImageCleanup,
		FetchTimeout:    c.ImageFetchTimeout,
		MaxSourceSizeMB: c.ImageMaxSourceMB,
	}
}

// CookieOptions returns the options shared by the cookie-based backends.
func (c *Config) CookieOptions() session.CookieOptions {
	return session.CookieOptions{Secret: c.CookieSecret, Secure: c.SecureCookies}
}
