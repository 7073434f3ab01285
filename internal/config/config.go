// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the process needs before it accepts traffic.
// Missing required values are a startup-fatal error.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":3000"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// SessionSecret keys the HMAC under which session tokens are stored.
	SessionSecret string `env:"SESSION_SECRET,required,notEmpty"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	GitHubClientID     string `env:"GITHUB_CLIENT_ID,required,notEmpty"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET,required,notEmpty"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

// CallbackURL returns the absolute OAuth callback URL for a provider path.
func (c Config) CallbackURL(path string) string {
	return c.BaseURL + path
}

// Secure reports whether the app is served over TLS, which decides the
// Secure flag on cookies.
func (c Config) Secure() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}
