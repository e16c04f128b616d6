// pkg/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "orders")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "store")
}

func TestLoadConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, []string{"customer_name"}, cfg.IdentityKey)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "localhost", cfg.Postgres.Host)
		assert.Equal(t, 5432, cfg.Postgres.Port)
		assert.Equal(t, 300*time.Second, cfg.Postgres.StatementTimeout)
	})

	t.Run("parses identity key list", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ORDERS_IDENTITY_KEY", "customer_name, category")

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, []string{"customer_name", "category"}, cfg.IdentityKey)
	})

	t.Run("rejects unknown identity key fields", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ORDERS_IDENTITY_KEY", "no_such_column")

		_, err := LoadConfig()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no_such_column")
	})

	t.Run("requires database credentials", func(t *testing.T) {
		t.Setenv("POSTGRES_USER", "")
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("POSTGRES_DB", "store")

		_, err := LoadConfig()

		assert.Error(t, err)
	})
}

func TestPostgresConnectionString(t *testing.T) {
	cfg := &PostgresConfig{
		Host:     "db.internal",
		Port:     6543,
		User:     "orders",
		Password: "secret",
		Database: "store",
		SSLMode:  "require",
	}

	t.Run("without statement timeout", func(t *testing.T) {
		assert.Equal(t,
			"host=db.internal port=6543 user=orders password=secret dbname=store sslmode=require",
			cfg.ConnectionString())
	})

	t.Run("statement timeout applies to every pooled connection", func(t *testing.T) {
		timed := *cfg
		timed.StatementTimeout = 300 * time.Second

		assert.Equal(t,
			"host=db.internal port=6543 user=orders password=secret dbname=store sslmode=require"+
				" options='-c statement_timeout=300000'",
			timed.ConnectionString())
	})
}
