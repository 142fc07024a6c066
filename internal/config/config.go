// Package config loads application configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting the server needs. Values come from
// environment variables; defaults suit local development except for
// JWT_SECRET, which is always required.
type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBPath     string `env:"DB_PATH" envDefault:"learnhub.db"`
	JWTSecret  string `env:"JWT_SECRET,required"`
	Env        string `env:"APP_ENV" envDefault:"development"`
	BcryptCost int    `env:"BCRYPT_COST" envDefault:"10"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the app runs in production mode. Cookie
// attributes (Secure, SameSite=None) key off this.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
