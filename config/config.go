// Package config loads server settings from the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file in the working directory. Command-line flags override them in
// main.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/wricardo/toy-robot/game/store"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds everything needed to start the server
type Config struct {
	Host  string `env:"TOYROBOT_HOST" envDefault:"localhost"`
	Port  int    `env:"TOYROBOT_PORT" envDefault:"8080"`
	Debug bool   `env:"TOYROBOT_DEBUG"`

	StoreDriver string `env:"TOYROBOT_STORE_DRIVER" envDefault:"sqlite"`
	SQLiteDSN   string `env:"TOYROBOT_SQLITE_DSN" envDefault:":memory:"`

	Ngrok NgrokConfig
}

// NgrokConfig controls the optional public tunnel
type NgrokConfig struct {
	Enabled   bool   `env:"NGROK_ENABLED"`
	AuthToken string `env:"NGROK_AUTHTOKEN"`
	Domain    string `env:"NGROK_DOMAIN"`
}

// Addr returns host:port
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the values that env parsing cannot
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	switch c.StoreDriver {
	case store.DriverMemory, store.DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}

// Load reads .env files (if present) and parses the environment
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}
	return Parse()
}

// Parse reads the process environment only
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	// Support both token spellings.
	if cfg.Ngrok.AuthToken == "" {
		cfg.Ngrok.AuthToken = os.Getenv("NGROK_AUTH_TOKEN")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
