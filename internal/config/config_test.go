package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageTypeRedis, cfg.StorageType)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "", cfg.RedisKeyPrefix)
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.Equal(t, 3*time.Second, cfg.RedisTimeout)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 100, cfg.LeaderboardMaxPageSize)
	assert.Equal(t, 200, cfg.SimulationMaxUsers)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "Memory")
	t.Setenv("REDIS_URL", "redis://cache:6380/2")
	t.Setenv("REDIS_KEY_PREFIX", "mb:")
	t.Setenv("REDIS_TIMEOUT", "500ms")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LEADERBOARD_MAX_PAGE_SIZE", "25")
	t.Setenv("SIMULATION_MAX_USERS", "50")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageTypeMemory, cfg.StorageType)
	assert.Equal(t, "redis://cache:6380/2", cfg.RedisURL)
	assert.Equal(t, "mb:", cfg.RedisKeyPrefix)
	assert.Equal(t, 500*time.Millisecond, cfg.RedisTimeout)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 25, cfg.LeaderboardMaxPageSize)
	assert.Equal(t, 50, cfg.SimulationMaxUsers)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 4, cfg.BcryptCost)
}

func TestLoadInvalidNumberFallsBack(t *testing.T) {
	t.Setenv("REDIS_POOL_SIZE", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.RedisPoolSize)
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadBcryptCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "99")

	_, err := Load()
	assert.Error(t, err)
}
