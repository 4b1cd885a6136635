package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DriverMemory, cfg.Store.Driver)
	require.Equal(t, "4000", cfg.Server.Port)
	require.Equal(t, "0.0.0.0:4000", cfg.Server.Addr())
	require.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
	require.Equal(t, 10, cfg.SQL.MaxOpenConns)
	require.Equal(t, 1500*time.Millisecond, cfg.Autosave.Idle)
	require.Equal(t, "catatan", cfg.MongoDB.Database)
}

func TestLoadConfig_EmptyDriverIsInvalid(t *testing.T) {
	t.Setenv("STORE_DRIVER", " ")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_Mongo(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGODB_URI", "")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "MONGODB_URI")

	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "catatan_test")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "catatan_test", cfg.MongoDB.Database)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
}

func TestLoadConfig_SQLRequiresDSN(t *testing.T) {
	for _, driver := range []string{"postgres", "SQLite"} {
		t.Setenv("STORE_DRIVER", driver)
		t.Setenv("SQL_DSN", "")
		_, err := LoadConfig()
		require.ErrorContains(t, err, "SQL_DSN", driver)
	}

	t.Setenv("SQL_DSN", "file:pages.db")
	t.Setenv("SQL_MAX_OPEN_CONNS", "4")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DriverSQLite, cfg.Store.Driver)
	require.Equal(t, 4, cfg.SQL.MaxOpenConns)
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "cassandra")
}

func TestLoadConfig_RedisAndRateLimit(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.Redis.Enabled())
	require.Equal(t, "cache:6379", cfg.Redis.Addr())
	require.True(t, cfg.RateLimit.Enabled)
	require.Equal(t, 2.5, cfg.RateLimit.RPS)
	require.Equal(t, time.Second, cfg.RateLimit.Window)
}
