// Package config reads server settings from the environment once at startup.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Config holds every server setting
type Config struct {
	// Storage
	StorageType    string
	RedisURL       string
	RedisKeyPrefix string
	RedisPoolSize  int
	RedisTimeout   time.Duration

	// Server
	ServerPort int
	LogLevel   slog.Level

	// Ranking
	LeaderboardMaxPageSize int

	// Simulation
	SimulationMaxUsers int

	// Rate limit, per client address
	RateLimitRPS   float64
	RateLimitBurst int

	// Users
	BcryptCost int
}

// Load reads the Config from environment variables.
// Unset or unparsable numeric values fall back to their defaults.
func Load() (*Config, error) {
	cfg := &Config{
		StorageType:            strings.ToLower(getEnvString("STORAGE_TYPE", StorageTypeRedis)),
		RedisURL:               getEnvString("REDIS_URL", "redis://localhost:6379"),
		RedisKeyPrefix:         getEnvString("REDIS_KEY_PREFIX", ""),
		RedisPoolSize:          getEnvInt("REDIS_POOL_SIZE", 10),
		RedisTimeout:           getEnvDuration("REDIS_TIMEOUT", 3*time.Second),
		ServerPort:             getEnvInt("SERVER_PORT", 8080),
		LeaderboardMaxPageSize: getEnvInt("LEADERBOARD_MAX_PAGE_SIZE", 100),
		SimulationMaxUsers:     getEnvInt("SIMULATION_MAX_USERS", 200),
		RateLimitRPS:           getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 40),
		BcryptCost:             getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
	}

	switch cfg.StorageType {
	case StorageTypeMemory, StorageTypeRedis:
	default:
		return nil, fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q", StorageTypeMemory, StorageTypeRedis, cfg.StorageType)
	}

	level, err := parseLevel(getEnvString("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
