package models

// MConfig Structure
type MConfig struct {
	Name      string                  `yaml:"name"`
	Host      string                  `yaml:"host"`
	Port      int                     `yaml:"port"`
	LogLevel  string                  `yaml:"log_level"`
	GrpcHost  string                  `yaml:"grpc_host"`
	GrpcPort  int                     `yaml:"grpc_port"`
	Storage   MStorageConfig          `yaml:"storage"`
	Network   MNetworkConfig          `yaml:"network"`
	Origin    MOriginConfig           `yaml:"origin"`
	Cache     MCacheConfig            `yaml:"cache"`
	Refresh   MRefreshConfig          `yaml:"refresh"`
	Dashboard MDashboardConfig        `yaml:"dashboard"`
	Themes    map[string]MThemeConfig `yaml:"themes"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // sqlite, postgres or mongo
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	DBName             string `yaml:"db_name"` // mongo database / postgres schema
	CustomDir          string `yaml:"custom_dir"`
}

type MNetworkConfig struct {
	Proxies         []string `yaml:"proxies"`
	RequestTimeout  int      `yaml:"timeout"`
	MaxRetries      int      `yaml:"retries"`
	RateLimitPerSec int      `yaml:"rate_limit_per_sec"`
	UserAgent       string   `yaml:"user_agent"`
}

type MOriginConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"` // FRED_API_KEY is used when empty
}

type MCacheConfig struct {
	TTL                string `yaml:"ttl"` // e.g. "24h"
	ConcurrentRequests int    `yaml:"concurrent_requests"`
}

type MRefreshConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hour     int    `yaml:"hour"`     // UTC hour after which the daily refresh runs
	Calendar string `yaml:"calendar"` // MIC code, e.g. "xnys"
}

type MDashboardConfig struct {
	DefaultTheme    string `yaml:"default_theme"`
	SmoothingWindow int    `yaml:"smoothing_window"`
	CacheMaxAge     int    `yaml:"cache_max_age"` // seconds, Cache-Control on GET /api/dashboard
}

// MThemeConfig describes the colours and chart template of a dashboard theme.
type MThemeConfig struct {
	Template     string            `yaml:"template"`
	Palette      []string          `yaml:"palette"`
	Colors       map[string]string `yaml:"colors"` // indicator id -> colour
	DefaultColor string            `yaml:"default_color"`
}
