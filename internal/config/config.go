package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. VALIDFILES_CACHE_URL
const EnvPrefix = "VALIDFILES"

// Config represents the entire application configuration
type Config struct {
	Storage     StorageConfig     `mapstructure:"storage"`
	Cache       CacheConfig       `mapstructure:"cache"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// StorageConfig contains file store settings
type StorageConfig struct {
	RootDir        string `mapstructure:"root_dir"`
	BufferSizeMB   int    `mapstructure:"buffer_size_mb"`
	TempFileMaxAge string `mapstructure:"temp_file_max_age"`
}

// CacheConfig contains validity cache (Redis) settings
type CacheConfig struct {
	URL          string `mapstructure:"url"`
	ScanCount    int64  `mapstructure:"scan_count"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	BindAddr        string `mapstructure:"bind_addr"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	IdleTimeout     string `mapstructure:"idle_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
	MaxUploadSize   string `mapstructure:"max_upload_size"`
}

// DatabaseConfig contains activity database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MaintenanceConfig contains periodic cleanup settings
type MaintenanceConfig struct {
	CleanupInterval string `mapstructure:"cleanup_interval"`
	ActivityMaxAge  string `mapstructure:"activity_max_age"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string            `mapstructure:"level"`
	Format string            `mapstructure:"format"`
	Fields map[string]string `mapstructure:"fields"`
}

// Load loads configuration from the specified file path. An empty path
// loads defaults and environment overrides only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.root_dir", "/var/lib/validfiles/files")
	v.SetDefault("storage.buffer_size_mb", 1)
	v.SetDefault("storage.temp_file_max_age", "24h")
	v.SetDefault("cache.url", "redis://localhost:6379/0")
	v.SetDefault("cache.scan_count", 100)
	v.SetDefault("cache.pool_size", 50)
	v.SetDefault("cache.min_idle_conns", 5)
	v.SetDefault("cache.dial_timeout", "5s")
	v.SetDefault("cache.read_timeout", "3s")
	v.SetDefault("cache.write_timeout", "3s")
	v.SetDefault("http.bind_addr", "0.0.0.0:8080")
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("http.max_upload_size", "100MB")
	v.SetDefault("database.path", "/var/lib/validfiles/activity.db")
	v.SetDefault("maintenance.cleanup_interval", "1h")
	v.SetDefault("maintenance.activity_max_age", "720h")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate storage config
	if c.Storage.RootDir == "" {
		return fmt.Errorf("storage.root_dir is required")
	}
	if c.Storage.BufferSizeMB < 0 {
		return fmt.Errorf("storage.buffer_size_mb must not be negative")
	}

	// Validate cache config
	u, err := url.Parse(c.Cache.URL)
	if err != nil {
		return fmt.Errorf("invalid cache.url: %w", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return fmt.Errorf("cache.url must use redis:// or rediss://, got %q", c.Cache.URL)
	}
	if c.Cache.ScanCount <= 0 {
		return fmt.Errorf("cache.scan_count must be positive")
	}
	if c.Cache.PoolSize < 0 {
		return fmt.Errorf("cache.pool_size must not be negative")
	}

	// Validate HTTP config
	if c.HTTP.BindAddr == "" {
		return fmt.Errorf("http.bind_addr is required")
	}
	if size, err := units.RAMInBytes(c.HTTP.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid http.max_upload_size: %w", err)
	} else if size <= 0 {
		return fmt.Errorf("http.max_upload_size must be positive")
	}

	// Validate durations
	durations := map[string]string{
		"storage.temp_file_max_age":    c.Storage.TempFileMaxAge,
		"cache.dial_timeout":           c.Cache.DialTimeout,
		"cache.read_timeout":           c.Cache.ReadTimeout,
		"cache.write_timeout":          c.Cache.WriteTimeout,
		"http.read_timeout":            c.HTTP.ReadTimeout,
		"http.write_timeout":           c.HTTP.WriteTimeout,
		"http.idle_timeout":            c.HTTP.IdleTimeout,
		"http.shutdown_timeout":        c.HTTP.ShutdownTimeout,
		"maintenance.cleanup_interval": c.Maintenance.CleanupInterval,
		"maintenance.activity_max_age": c.Maintenance.ActivityMaxAge,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// parseDuration parses s, falling back to def when empty or invalid
func parseDuration(s string, def time.Duration) time.Duration {
	d, _ := time.ParseDuration(s)
	if d == 0 {
		return def
	}
	return d
}

// GetBufferSize returns the write buffer size in bytes
func (c *StorageConfig) GetBufferSize() int {
	if c.BufferSizeMB <= 0 {
		return 1024 * 1024 // 1MB default
	}
	return c.BufferSizeMB * 1024 * 1024
}

// GetTempFileMaxAge returns the temp file max age as time.Duration
func (c *StorageConfig) GetTempFileMaxAge() time.Duration {
	return parseDuration(c.TempFileMaxAge, 24*time.Hour)
}

// GetDialTimeout returns the dial timeout as time.Duration
func (c *CacheConfig) GetDialTimeout() time.Duration {
	return parseDuration(c.DialTimeout, 5*time.Second)
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *CacheConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 3*time.Second)
}

// GetWriteTimeout returns the write timeout as time.Duration
func (c *CacheConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 3*time.Second)
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout returns the write timeout as time.Duration
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 30*time.Second)
}

// GetIdleTimeout returns the idle timeout as time.Duration
func (c *HTTPConfig) GetIdleTimeout() time.Duration {
	return parseDuration(c.IdleTimeout, 60*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown timeout as time.Duration
func (c *HTTPConfig) GetShutdownTimeout() time.Duration {
	return parseDuration(c.ShutdownTimeout, 10*time.Second)
}

// GetMaxUploadSize returns the upload limit in bytes. Accepts human sizes
// such as "100MB" or "1GiB".
func (c *HTTPConfig) GetMaxUploadSize() int64 {
	size, err := units.RAMInBytes(c.MaxUploadSize)
	if err != nil || size <= 0 {
		return 100 * units.MiB
	}
	return size
}

// GetCleanupInterval returns the cleanup interval as time.Duration
func (c *MaintenanceConfig) GetCleanupInterval() time.Duration {
	return parseDuration(c.CleanupInterval, time.Hour)
}

// GetActivityMaxAge returns the activity retention as time.Duration
func (c *MaintenanceConfig) GetActivityMaxAge() time.Duration {
	return parseDuration(c.ActivityMaxAge, 30*24*time.Hour)
}
