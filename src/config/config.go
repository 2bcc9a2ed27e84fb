package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"econ-dashboard/src/models"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCacheTTL        = 24 * time.Hour
	DefaultTheme           = "light"
	DefaultSmoothingWindow = 5
	DefaultCacheMaxAge     = 300
	APIKeyEnvVar           = "FRED_API_KEY"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a validated Config from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.CustomDir == "" {
		c.Storage.CustomDir = "./data/custom"
	}
	if c.Origin.Name == "" {
		c.Origin.Name = "fred"
	}
	if strings.TrimSpace(c.Origin.APIKey) == "" {
		c.Origin.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnvVar))
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = DefaultCacheTTL.String()
	}
	if c.Cache.ConcurrentRequests == 0 {
		c.Cache.ConcurrentRequests = 4
	}
	if c.Refresh.Calendar == "" {
		c.Refresh.Calendar = "xnys"
	}
	if c.Dashboard.DefaultTheme == "" {
		c.Dashboard.DefaultTheme = DefaultTheme
	}
	if c.Dashboard.SmoothingWindow == 0 {
		c.Dashboard.SmoothingWindow = DefaultSmoothingWindow
	}
	if c.Dashboard.CacheMaxAge == 0 {
		c.Dashboard.CacheMaxAge = DefaultCacheMaxAge
	}
	if c.Themes == nil {
		c.Themes = make(map[string]models.MThemeConfig)
	}
	for name, theme := range BuiltinThemes() {
		if _, ok := c.Themes[name]; !ok {
			c.Themes[name] = theme
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres", "mongo":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for %s", c.Storage.DBType)
		}
	default:
		return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.RateLimitPerSec < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}

	// Validate Origin configuration
	if c.Origin.BaseURL == "" {
		return fmt.Errorf("origin base url cannot be empty")
	}

	// Validate Cache configuration
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
	}
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be greater than 0")
	}
	if c.Cache.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	if c.Refresh.Hour < 0 || c.Refresh.Hour > 23 {
		return fmt.Errorf("refresh hour must be between 0 and 23")
	}

	if c.Dashboard.SmoothingWindow < 1 {
		return fmt.Errorf("smoothing window must be at least 1")
	}
	if _, ok := c.Themes[c.Dashboard.DefaultTheme]; !ok {
		return fmt.Errorf("default theme %q is not defined", c.Dashboard.DefaultTheme)
	}

	return nil
}

// -----------------------------------------------------------------------------

// CacheTTL returns the freshness window of the persistent cache tier.
func (c *Config) CacheTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || ttl <= 0 {
		return DefaultCacheTTL
	}
	return ttl
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
