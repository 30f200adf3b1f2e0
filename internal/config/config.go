// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/catalog"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"smartbiz"`
		Env      string `envconfig:"APP_ENV" default:"development"`
		Port     int    `envconfig:"APP_PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	Server struct {
		ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	}

	Storage struct {
		// Driver is memory or postgres
		Driver string `envconfig:"STORAGE_DRIVER" default:"memory"`
	}

	DB struct {
		URL      string `envconfig:"DATABASE_URL"`
		MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
		MinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`
	}

	Business struct {
		BaseCurrency       string `envconfig:"BASE_CURRENCY" default:"TND"`
		DefaultTaxRate     string `envconfig:"DEFAULT_TAX_RATE" default:"19"`
		DefaultFiscalStamp string `envconfig:"DEFAULT_FISCAL_STAMP" default:"1"`
		AllowNegativeStock bool   `envconfig:"ALLOW_NEGATIVE_STOCK" default:"false"`
	}

	Idempotency struct {
		Enabled bool          `envconfig:"IDEMPOTENCY_ENABLED" default:"true"`
		TTL     time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	}
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if _, err := types.NewMoneyFromString(c.Business.DefaultTaxRate); err != nil {
		return fmt.Errorf("DEFAULT_TAX_RATE: %w", err)
	}
	if _, err := types.NewMoneyFromString(c.Business.DefaultFiscalStamp); err != nil {
		return fmt.Errorf("DEFAULT_FISCAL_STAMP: %w", err)
	}
	return nil
}

// IsDevelopment reports whether logs should be human-readable.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// CatalogSettings returns the tax and currency settings. Call after Validate.
func (c *Config) CatalogSettings() catalog.Settings {
	return catalog.Settings{
		BaseCurrency:       c.Business.BaseCurrency,
		DefaultTaxRate:     types.MustMoney(c.Business.DefaultTaxRate),
		DefaultFiscalStamp: types.MustMoney(c.Business.DefaultFiscalStamp),
	}
}
