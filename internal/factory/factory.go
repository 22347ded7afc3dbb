package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mcoot/matchboard/internal/config"
	"github.com/mcoot/matchboard/internal/dependencies/clock"
	"github.com/mcoot/matchboard/internal/dependencies/random"
	"github.com/mcoot/matchboard/internal/metrics"
	"github.com/mcoot/matchboard/internal/services/match"
	"github.com/mcoot/matchboard/internal/services/ranking"
	"github.com/mcoot/matchboard/internal/services/simulation"
	"github.com/mcoot/matchboard/internal/services/users"
	"github.com/mcoot/matchboard/internal/storage"
	"github.com/mcoot/matchboard/internal/storage/memory"
	redisstorage "github.com/mcoot/matchboard/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageTypeMemory
	StorageTypeRedis  = config.StorageTypeRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Metrics
	Registry *prometheus.Registry
	Metrics  metrics.Recorder

	// Services
	UserService       *users.Service
	RankingService    *ranking.Service
	MatchService      *match.Service
	SimulationService *simulation.Service

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	UsersConfig      users.Config
	RankingConfig    ranking.Config
	SimulationConfig simulation.Config
}

// ConfigFromSettings maps environment settings onto a factory Config
func ConfigFromSettings(settings *config.Config, logger *slog.Logger) Config {
	cfg := Config{
		Logger:      logger,
		StorageType: settings.StorageType,
		UsersConfig: users.Config{BcryptCost: settings.BcryptCost},
		RankingConfig: ranking.Config{
			DefaultPageSize: ranking.DefaultConfig().DefaultPageSize,
			MaxPageSize:     settings.LeaderboardMaxPageSize,
		},
		SimulationConfig: simulation.Config{MaxUsers: settings.SimulationMaxUsers},
	}

	if settings.StorageType == StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = settings.RedisURL
		redisCfg.KeyPrefix = settings.RedisKeyPrefix
		redisCfg.PoolSize = settings.RedisPoolSize
		redisCfg.DialTimeout = settings.RedisTimeout
		redisCfg.ReadTimeout = settings.RedisTimeout
		redisCfg.WriteTimeout = settings.RedisTimeout
		cfg.RedisConfig = &redisCfg
	}

	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	app := newWithDependencies(store, clock.New(), random.New(), collector, cfg, logger)
	app.Registry = registry
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	recorder metrics.Recorder,
	cfg Config,
	logger *slog.Logger,
) *App {
	userService := users.New(store, clk, rnd, logger, recorder, cfg.UsersConfig)
	rankingService := ranking.New(store, logger, recorder, cfg.RankingConfig)
	matchService := match.New(rankingService, logger, recorder)
	simulationService := simulation.New(
		store, userService, matchService, rankingService, rnd, logger, recorder, cfg.SimulationConfig,
	)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Metrics:           recorder,
		UserService:       userService,
		RankingService:    rankingService,
		MatchService:      matchService,
		SimulationService: simulationService,
		Logger:            logger,
	}
}

// Close releases the storage connection, if it holds one
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
