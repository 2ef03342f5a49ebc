package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Env      string `envconfig:"ENV" default:"local"`
	LogLevel string `envconfig:"LOG_LEVEL"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`

	RedisAddrs    []string `envconfig:"REDIS_ADDRS"`
	RedisUsername string   `envconfig:"REDIS_USERNAME"`
	RedisPassword string   `envconfig:"REDIS_PASSWORD"`
	RedisDB       int      `envconfig:"REDIS_DB" default:"0"`

	// In-process cache used when no Redis address is configured
	MemoryCacheSize int `envconfig:"MEMORY_CACHE_SIZE" default:"10000"`

	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	AnalyticsTTL  time.Duration `envconfig:"ANALYTICS_TTL" default:"24h"`
	CacheCooldown time.Duration `envconfig:"CACHE_COOLDOWN" default:"30s"`

	// Zero disables the periodic search view refresh
	ViewRefreshInterval time.Duration `envconfig:"VIEW_REFRESH_INTERVAL" default:"0"`

	SentryDSN         string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment string  `envconfig:"SENTRY_ENVIRONMENT"`
	SentrySampleRate  float64 `envconfig:"SENTRY_SAMPLE_RATE" default:"0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("LUPPA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasRedis() bool {
	return len(c.RedisAddrs) > 0 && c.RedisAddrs[0] != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
