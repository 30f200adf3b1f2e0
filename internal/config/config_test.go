package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbiz/internal/core/types"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)

	s := cfg.CatalogSettings()
	assert.Equal(t, "TND", s.BaseCurrency)
	assert.True(t, s.DefaultTaxRate.Equal(types.MustMoney("19")))
	assert.True(t, s.DefaultFiscalStamp.Equal(types.MustMoney("1")))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/smartbiz")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ALLOW_NEGATIVE_STOCK", "true")
	t.Setenv("BASE_CURRENCY", "EUR")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.True(t, cfg.Business.AllowNegativeStock)
	assert.Equal(t, "EUR", cfg.CatalogSettings().BaseCurrency)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(c *Config)
		wantErr string
	}{
		{"postgres without url", func(c *Config) { c.Storage.Driver = StoragePostgres }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "STORAGE_DRIVER"},
		{"bad tax rate", func(c *Config) { c.Business.DefaultTaxRate = "abc" }, "DEFAULT_TAX_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.Storage.Driver = StorageMemory
			c.Business.DefaultTaxRate = "19"
			c.Business.DefaultFiscalStamp = "1"
			tt.setup(c)

			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
