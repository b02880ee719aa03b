package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	OTLP   OTLPConfig
	Client ClientConfig
}

type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"5s"`
}

type StoreConfig struct {
	Driver      string `envconfig:"STORE_DRIVER" default:"memory"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
}

type OTLPConfig struct {
	Endpoint       string     `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceName    string     `envconfig:"OTEL_SERVICE_NAME" default:"products-api"`
	ServiceVersion string     `envconfig:"OTEL_SERVICE_VERSION" default:"1.0.0"`
	Environment    string     `envconfig:"OTEL_ENVIRONMENT" default:"development"`
	ExportEnabled  bool       `envconfig:"OTEL_EXPORT_ENABLED" default:"false"`
	LogLevel       slog.Level `envconfig:"LOG_LEVEL" default:"DEBUG"`
	LogStderr      bool       `envconfig:"LOG_STDERR" default:"false"`
}

type ClientConfig struct {
	BaseURL string        `envconfig:"CATALOG_API_URL" default:"http://localhost:8080"`
	Timeout time.Duration `envconfig:"CATALOG_API_TIMEOUT" default:"10s"`
}

// LoadConfig loads configuration from environment variables. Variables from
// the given .env files are applied first without overriding the real
// environment; files that do not exist are skipped.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}
