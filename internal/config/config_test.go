package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("ACCESS_SUPERADMIN_PRINCIPALS", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Access.SuperAdminPrincipals)
	assert.Equal(t, 200, cfg.Access.AuditMaxPageSize)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, "care-access:events", cfg.Notification.RedisChannel)
	assert.Equal(t, 256, cfg.Notification.QueueSize)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ACCESS_SUPERADMIN_PRINCIPALS", " root-1 , ,root-2")
	t.Setenv("AUDIT_MAX_PAGE_SIZE", "25")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, []string{"root-1", "root-2"}, cfg.Access.SuperAdminPrincipals)
	assert.Equal(t, 25, cfg.Access.AuditMaxPageSize)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	assert.Error(t, err)
}

func TestMalformedIntFallsBack(t *testing.T) {
	t.Setenv("AUDIT_MAX_PAGE_SIZE", "lots")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Access.AuditMaxPageSize)
}
