package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gazon-app/waitlist/internal/log"
	"github.com/gazon-app/waitlist/internal/models"
	"github.com/gazon-app/waitlist/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWaitlistConfig_Defaults(t *testing.T) {
	for _, key := range []string{"WAITLIST_STORE", "WAITLIST_SESSION_TTL", "WAITLIST_SIGNUP_RATE_LIMIT", "WAITLIST_BREAKER_FAILURES", "WAITLIST_BREAKER_RECOVERY", "WAITLIST_BREAKER_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := NewWaitlistConfig()
	assert.Equal(t, "sql", cfg.Store)
	assert.Equal(t, constants.DefaultSessionTTL, cfg.SessionTTL)
	assert.Equal(t, constants.DefaultSignupRequestsPerMinute, cfg.SignupRequestsPerMinute)
	assert.Equal(t, constants.DefaultBreakerFailures, cfg.BreakerFailures)
	assert.Equal(t, constants.DefaultBreakerRecovery, cfg.BreakerRecovery)
}

func TestNewWaitlistConfig_FromEnv(t *testing.T) {
	t.Setenv("WAITLIST_STORE", "redis")
	t.Setenv("WAITLIST_SESSION_TTL", "5m")
	t.Setenv("WAITLIST_SIGNUP_RATE_LIMIT", "7")
	t.Setenv("WAITLIST_BREAKER_FAILURES", "not-a-number")
	t.Setenv("WAITLIST_BREAKER_RECOVERY", "10s")
	t.Setenv("WAITLIST_BREAKER_ENABLED", "")

	cfg := NewWaitlistConfig()
	assert.Equal(t, "redis", cfg.Store)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 7, cfg.SignupRequestsPerMinute)
	assert.Equal(t, constants.DefaultBreakerFailures, cfg.BreakerFailures)
	assert.Equal(t, 10*time.Second, cfg.BreakerRecovery)

	t.Setenv("WAITLIST_BREAKER_ENABLED", "false")
	assert.Equal(t, 0, NewWaitlistConfig().BreakerFailures)
}

func TestNewDatabase_SQLite(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()
	cfg := NewDBConfig()
	cfg.Driver = DriverSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "waitlist.db")

	db, err := NewDatabase(logger, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { CloseDatabase(db, logger) })

	require.NoError(t, AutoMigrate(logger, db, models.ModelRegistry...))
	assert.True(t, db.Migrator().HasTable(models.WaitlistTableName))
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	cfg := NewDBConfig()
	cfg.Driver = "mysql"

	_, err := NewDatabase(log.NewLoggerWithJSONOutput(), cfg)
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestBuildPostgresDSN(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()

	t.Run("database url wins", func(t *testing.T) {
		t.Setenv("APP_DATABASE_URL", `"postgres://u:p@db:5432/waitlist"`)
		dsn, err := buildPostgresDSN(logger, NewDBConfig())
		require.NoError(t, err)
		assert.Equal(t, "postgres://u:p@db:5432/waitlist", dsn)
	})

	t.Run("missing vars", func(t *testing.T) {
		t.Setenv("APP_DATABASE_URL", "")
		t.Setenv("POSTGRES_HOST", "")
		t.Setenv("POSTGRES_PORT", "")
		t.Setenv("POSTGRES_USER", "")
		t.Setenv("POSTGRES_DB_NAME", "")

		_, err := buildPostgresDSN(logger, NewDBConfig())
		assert.ErrorContains(t, err, "POSTGRES_HOST")
	})

	t.Run("discrete vars", func(t *testing.T) {
		t.Setenv("APP_DATABASE_URL", "")
		t.Setenv("POSTGRES_HOST", "db")
		t.Setenv("POSTGRES_PORT", "5432")
		t.Setenv("POSTGRES_USER", "waitlist")
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("POSTGRES_DB_NAME", "waitlist")
		t.Setenv("POSTGRES_SSLMODE", "")

		dsn, err := buildPostgresDSN(logger, NewDBConfig())
		require.NoError(t, err)
		assert.Equal(t, "host=db port=5432 user=waitlist password=secret dbname=waitlist sslmode=require", dsn)
	})
}

func TestNewCacheConfig_NotConfigured(t *testing.T) {
	t.Setenv("REDIS_HOST", "")

	cfg := NewCacheConfig()
	assert.False(t, cfg.IsConfigured())
	assert.Nil(t, cfg.NewCacheOrNil(log.NewLoggerWithJSONOutput()))
	assert.Nil(t, GetRedisClient(nil))
}
