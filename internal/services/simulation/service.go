// Package simulation populates the store with synthetic players and a full round robin.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/matchboard/internal/dependencies/random"
	"github.com/mcoot/matchboard/internal/metrics"
	"github.com/mcoot/matchboard/internal/model"
	"github.com/mcoot/matchboard/internal/services/match"
	"github.com/mcoot/matchboard/internal/services/ranking"
	"github.com/mcoot/matchboard/internal/services/users"
	"github.com/mcoot/matchboard/internal/storage"
)

const (
	// CompletedMessage is reported after a successful run
	CompletedMessage = "Simulation completed successfully"

	// maxMatchScore is the highest score a simulated side can post
	maxMatchScore = 10

	simulatedPassword = "password"
)

// Report summarises a run
type Report struct {
	Users      int    `json:"users"`
	Matches    int    `json:"matches"`
	Backfilled int    `json:"backfilled"`
	Message    string `json:"message"`
}

// Config holds simulation limits
type Config struct {
	MaxUsers int
}

// DefaultConfig returns default simulation limits
func DefaultConfig() Config {
	return Config{
		MaxUsers: 200,
	}
}

// Service drives simulation runs
type Service struct {
	storage storage.Storage
	users   *users.Service
	matches *match.Service
	ranking *ranking.Service
	random  random.Random
	logger  *slog.Logger
	metrics metrics.Recorder
	cfg     Config
}

// New creates a new simulation Service
func New(
	storage storage.Storage,
	users *users.Service,
	matches *match.Service,
	ranking *ranking.Service,
	random random.Random,
	logger *slog.Logger,
	recorder metrics.Recorder,
	cfg Config,
) *Service {
	if cfg.MaxUsers <= 0 {
		cfg.MaxUsers = DefaultConfig().MaxUsers
	}
	return &Service{
		storage: storage,
		users:   users,
		matches: matches,
		ranking: ranking,
		random:  random,
		logger:  logger,
		metrics: recorder,
		cfg:     cfg,
	}
}

// Run registers userCount players named player_1..player_n, plays every
// unordered pair once with random scores, then gives every stored player
// a ranking entry. The first failure aborts the run; earlier writes stay.
func (s *Service) Run(ctx context.Context, userCount int) (*Report, error) {
	if userCount < 2 {
		return nil, model.ErrTooFewUsers
	}
	if userCount > s.cfg.MaxUsers {
		return nil, fmt.Errorf("%w: at most %d", model.ErrTooManyUsers, s.cfg.MaxUsers)
	}

	started := time.Now()

	ids := make([]model.PlayerID, 0, userCount)
	for i := 1; i <= userCount; i++ {
		player, err := s.users.Register(ctx,
			fmt.Sprintf("player_%d", i),
			simulatedPassword,
			fmt.Sprintf("Name%d", i),
			fmt.Sprintf("Surname%d", i),
		)
		if err != nil {
			return nil, fmt.Errorf("registering simulated player %d: %w", i, err)
		}
		ids = append(ids, player.ID)
	}

	matches := 0
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			outcome := model.MatchOutcome{
				PlayerID1: ids[i],
				PlayerID2: ids[j],
				Score1:    s.random.Intn(maxMatchScore + 1),
				Score2:    s.random.Intn(maxMatchScore + 1),
			}
			if _, err := s.matches.ProcessResult(ctx, outcome); err != nil {
				return nil, fmt.Errorf("playing %d vs %d: %w", ids[i], ids[j], err)
			}
			matches++
		}
	}

	all, err := s.storage.ListPlayerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	backfilled, err := s.ranking.BackfillZeroScoreMembers(ctx, all)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSimulation(userCount, matches)
	s.logger.Info("simulation completed",
		slog.Int("users", userCount),
		slog.Int("matches", matches),
		slog.Int("backfilled", backfilled),
		slog.Duration("duration", time.Since(started)),
	)

	return &Report{
		Users:      userCount,
		Matches:    matches,
		Backfilled: backfilled,
		Message:    CompletedMessage,
	}, nil
}
