package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ListenAddress string `envconfig:"LISTEN_ADDRESS" default:":8080"`
	DebugAddress  string `envconfig:"DEBUG_ADDRESS" default:":8081"`

	Storefront      string `envconfig:"NAME" default:"default"`
	PreferencesPath string `envconfig:"PREFERENCES_PATH"`
	DataDir         string `envconfig:"DATA_DIR" default:"data"`

	RedisUrl      string `envconfig:"REDIS_URL"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RabbitUrl     string `envconfig:"RABBIT_URL"`

	SentryDsn   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	PopularCacheTTL time.Duration `envconfig:"POPULAR_CACHE_TTL" default:"5m"`
	BackendTimeout  time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"30m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("STOREFRONT", &cfg); err != nil {
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
	return c.RedisUrl != ""
}

func (c *Config) HasRabbit() bool {
	return c.RabbitUrl != ""
}
