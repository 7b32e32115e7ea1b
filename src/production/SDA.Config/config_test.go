package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SDA_MANAGER_ADDRESS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 48099, cfg.Manager.Port)
	assert.Equal(t, 48098, cfg.Manager.AgentPort)
	assert.Equal(t, 300*time.Second, cfg.Manager.Timeout)
	assert.Empty(t, cfg.Manager.Address)
	assert.Equal(t, "sdaconsole_session", cfg.Session.CookieName)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SDA_MANAGER_ADDRESS", "10.0.0.7")
	t.Setenv("SDA_MANAGER_PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local, http://b.local ,")
	t.Setenv("EVENTS_BROKER_HOST", "broker")
	t.Setenv("EVENTS_BROKER_TLS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.7", cfg.Manager.Address)
	assert.Equal(t, 9000, cfg.Manager.Port)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "tcps://broker:1883", cfg.GetEventsBrokerURL())
}

func TestValidateStoreDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGODB_URI", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")

	t.Setenv("STORE_DRIVER", "cassandra")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown STORE_DRIVER")
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Postgres: PostgresConfig{
		Host: "db", Port: 5432, User: "sda", Password: "pw", DBName: "console", SSLMode: "disable",
	}}}

	assert.Equal(t, "host=db port=5432 user=sda password=pw dbname=console sslmode=disable", cfg.GetDatabaseDSN())
}
