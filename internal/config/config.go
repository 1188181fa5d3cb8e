package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Run modes and store backends selectable at startup.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"

	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken  string `envconfig:"BOT_TOKEN" required:"true"`
	Store     string `envconfig:"STORE" default:"sqlite"` // sqlite|redis
	DBPath    string `envconfig:"DB_PATH" default:"./data/sst.db"`
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Region    string `envconfig:"REGION" default:"Artvin"`
	TZ        string `envconfig:"TZ" default:"Asia/Tbilisi"`
	RunMode   string `envconfig:"RUN_MODE" default:"polling"` // polling|webhook
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	TickToken string `envconfig:"TICK_TOKEN"` // shared secret for /tick; empty disables the check
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
}

// Load reads environment variables into Config and validates them.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.RunMode {
	case ModePolling, ModeWebhook:
	default:
		return fmt.Errorf("unknown RUN_MODE %q", c.RunMode)
	}
	switch c.Store {
	case StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if _, err := time.LoadLocation(c.TZ); err != nil {
		return fmt.Errorf("invalid TZ %q: %w", c.TZ, err)
	}
	return nil
}

// Location returns the configured time zone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TZ)
}
