package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends understood by the kv repository module.
const (
	BackendMemory   = "memory"
	BackendPebble   = "pebble"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Store struct {
		Backend  string `env:"STORE_BACKEND" env-default:"pebble" env-description:"memory, pebble, redis or postgres"`
		Key      string `env:"STORE_KEY" env-default:"scheduledPosts"`
		FailOpen bool   `env:"STORE_FAIL_OPEN" env-default:"false" env-description:"start empty instead of failing when the stored posts cannot be read"`
	}
	Pebble struct {
		Path string `env:"PEBBLE_PATH" env-default:"./data/posts"`
	}
	Redis struct {
		URL    string `env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
		Prefix string `env:"REDIS_PREFIX" env-default:"post-scheduler/"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Clock struct {
		Interval time.Duration `env:"CLOCK_INTERVAL" env-default:"1s"`
		Timezone string        `env:"CLOCK_TIMEZONE" env-default:"UTC"`
	}
	Telegram struct {
		Token   string `env:"TELEGRAM_TOKEN"`
		Channel string `env:"TELEGRAM_CHANNEL"`
		Workers int    `env:"TELEGRAM_WORKERS" env-default:"5"`
	}
}

var (
	once    sync.Once
	cfg     *Config
	loadErr error
)

// New reads the configuration from the environment once per process.
func New() (*Config, error) {
	once.Do(func() {
		c := &Config{}
		if err := cleanenv.ReadEnv(c); err != nil {
			help, _ := cleanenv.GetDescription(c, nil)
			loadErr = fmt.Errorf("failed to read configuration: %w\n%s", err, help)
			return
		}
		if err := c.Validate(); err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return cfg, loadErr
}

// Validate checks values cleanenv cannot express with tags.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendPebble, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Key == "" {
		return fmt.Errorf("store key must not be empty")
	}
	if c.Clock.Interval <= 0 {
		return fmt.Errorf("clock interval must be positive, got %s", c.Clock.Interval)
	}
	if _, err := time.LoadLocation(c.Clock.Timezone); err != nil {
		return fmt.Errorf("invalid clock timezone %q: %w", c.Clock.Timezone, err)
	}
	return nil
}

// Location returns the timezone used to read and display times, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Clock.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDSN builds the postgres connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}
