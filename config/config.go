// Package config holds the server's environment-driven configuration.
// Values come from the process environment (optionally seeded from a .env
// file in main); command-line flags take their defaults from here.
package config

import (
	"fmt"

	env "github.com/Netflix/go-env"
)

// Config captures every tunable of the lobby server. All fields have
// defaults so an empty environment yields a working development setup.
type Config struct {
	Host      string `env:"HOST,default=localhost"`
	Port      int    `env:"PORT,default=8080"`
	StaticDir string `env:"STATIC_DIR,default=static"`

	ReadTimeoutSeconds  int `env:"READ_TIMEOUT_SECONDS,default=15"`
	WriteTimeoutSeconds int `env:"WRITE_TIMEOUT_SECONDS,default=15"`
	IdleTimeoutSeconds  int `env:"IDLE_TIMEOUT_SECONDS,default=60"`

	NgrokEnabled bool   `env:"NGROK_ENABLED,default=false"`
	NgrokAuth    string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain  string `env:"NGROK_DOMAIN"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
