package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config keeps runtime settings for the service.
type Config struct {
	ServerPort int    `env:"SERVER_PORT" envDefault:"8080"`
	JWTSecret  string `env:"JWT_SECRET,required,notEmpty"`

	Database struct {
		Driver string `env:"DB_DRIVER" envDefault:"sqlite3"`
		DSN    string `env:"DB_DSN" envDefault:"./taskquest.db"`
	}

	RateLimit struct {
		Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"5"`
		Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1s"`
	}

	// Timezone governs day boundaries for streak evaluation.
	Timezone string `env:"TIMEZONE" envDefault:"UTC"`
	// StreakEvalTime is the HH:MM local time the daily evaluation runs.
	StreakEvalTime string `env:"STREAK_EVAL_TIME" envDefault:"00:05"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
