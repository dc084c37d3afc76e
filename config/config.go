package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Social   SocialConfig   `mapstructure:"social"`
	Content  ContentConfig  `mapstructure:"content"`
}

type ServerConfig struct {
	Port      int      `mapstructure:"port"`
	Debug     bool     `mapstructure:"debug"`
	AdminKey  string   `mapstructure:"admin_key"`
	AdminIPs  []string `mapstructure:"admin_ips"`  // addresses or CIDRs; empty allows any
	SentryDSN string   `mapstructure:"sentry_dsn"` // empty disables Sentry reporting
	Env       string   `mapstructure:"env"`
}

type DatabaseConfig struct {
	Mode        string        `mapstructure:"mode"` // sqlite | mysql | postgres
	SQLitePath  string        `mapstructure:"sqlite_path"`
	MySQLDSN    string        `mapstructure:"mysql_dsn"`
	PostgresDSN string        `mapstructure:"postgres_dsn"`
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLife     time.Duration `mapstructure:"max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

type SecurityConfig struct {
	// JWTSecret verifies tokens minted by the identity provider (HS256).
	JWTSecret      string  `mapstructure:"jwt_secret"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type SocialConfig struct {
	SearchLimit    int           `mapstructure:"search_limit"`
	SearchMaxLimit int           `mapstructure:"search_max_limit"`
	FriendCacheTTL time.Duration `mapstructure:"friend_cache_ttl"`
}

type ContentConfig struct {
	FeedLimit         int           `mapstructure:"feed_limit"`
	TransactionalLike bool          `mapstructure:"transactional_likes"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	MessageLimit      int           `mapstructure:"message_limit"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied and no file read.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.env", "development")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/social.db")
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
	v.SetDefault("social.search_limit", 20)
	v.SetDefault("social.search_max_limit", 50)
	v.SetDefault("social.friend_cache_ttl", "5m")
	v.SetDefault("content.feed_limit", 30)
	v.SetDefault("content.transactional_likes", true)
	v.SetDefault("content.reconcile_interval", "10m")
	v.SetDefault("content.message_limit", 50)
}
