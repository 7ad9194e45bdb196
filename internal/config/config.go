// Package config loads service configuration from the environment, with a
// .env file applied first when present.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the process-level configuration.
type Config struct {
	// GraceMS is the slack beyond the advertised turn duration before a
	// timeout auto-action fires.
	GraceMS int `env:"TURN_GRACE_MS" envDefault:"1000"`

	// DefaultTurnSec applies when a room's settings leave the per-turn
	// limit unset. Zero disables timers for such rooms.
	DefaultTurnSec int `env:"DEFAULT_TURN_SEC" envDefault:"30"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // text or json
}

// Load reads .env if one exists, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Grace returns the timeout slack as a duration.
func (c Config) Grace() time.Duration {
	return time.Duration(c.GraceMS) * time.Millisecond
}

// Logger builds the process logger from the config.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
