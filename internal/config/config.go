package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/membership-service/internal/account"
	"github.com/WailSalutem-Health-Care/membership-service/internal/auth"
	"github.com/WailSalutem-Health-Care/membership-service/internal/db"
	"github.com/WailSalutem-Health-Care/membership-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/membership-service/internal/telemetry"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Server holds the HTTP and process settings
type Server struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	PermissionsFile string        `env:"PERMISSIONS_FILE" envDefault:"permissions.yml"`
	StoreBackend    string        `env:"STORE_BACKEND" envDefault:"postgres"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Config is the full service configuration
type Config struct {
	Server    Server
	Database  db.Config
	Auth      auth.Config
	Keycloak  account.KeycloakConfig
	Messaging messaging.Config
	Telemetry telemetry.Config
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that env tags cannot express
func (c *Config) Validate() error {
	c.Server.StoreBackend = strings.ToLower(strings.TrimSpace(c.Server.StoreBackend))
	switch c.Server.StoreBackend {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: use %q or %q", c.Server.StoreBackend, StorePostgres, StoreMemory)
	}
	if c.Server.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	return nil
}
