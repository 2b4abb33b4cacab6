// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the market server. Durations use Go's
// duration syntax ("1s", "5m").
type Config struct {
	Addr   string `env:"ADDR" envDefault:":8080"`
	DBPath string `env:"DB_PATH" envDefault:"cryptotycoon.db"`
	Debug  bool   `env:"DEBUG" envDefault:"false"`

	// AI provider settings. An empty key disables AI news and advice;
	// the engine degrades to procedural news only.
	AIAPIKey  string `env:"AI_API_KEY"`
	AIBaseURL string `env:"AI_BASE_URL" envDefault:"https://api.openai.com/v1/chat/completions"`
	AIModel   string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`

	TickInterval     time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	NewsPollInterval time.Duration `env:"NEWS_POLL_INTERVAL" envDefault:"20s"`
	AutosaveInterval time.Duration `env:"AUTOSAVE_INTERVAL" envDefault:"5m"`
	NewsCooldown     time.Duration `env:"NEWS_COOLDOWN" envDefault:"5s"`

	// RandSeed fixes the simulation RNG for reproducible runs. 0 seeds
	// from the wall clock.
	RandSeed int64 `env:"RAND_SEED" envDefault:"0"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
