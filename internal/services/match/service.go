// Package match applies reported 1v1 results to the ranking.
package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/matchboard/internal/metrics"
	"github.com/mcoot/matchboard/internal/model"
	"github.com/mcoot/matchboard/internal/services/ranking"
)

// Service processes match results
type Service struct {
	ranking *ranking.Service
	logger  *slog.Logger
	metrics metrics.Recorder
}

// New creates a new match Service
func New(ranking *ranking.Service, logger *slog.Logger, recorder metrics.Recorder) *Service {
	return &Service{
		ranking: ranking,
		logger:  logger,
		metrics: recorder,
	}
}

// Validate checks the outcome before anything is written
func Validate(outcome model.MatchOutcome) error {
	if outcome.PlayerID1 < 1 || outcome.PlayerID2 < 1 {
		return fmt.Errorf("%w: player ids must be positive", model.ErrInvalidID)
	}
	if outcome.PlayerID1 == outcome.PlayerID2 {
		return fmt.Errorf("%w: a player cannot play themselves", model.ErrInvalidID)
	}
	if outcome.Score1 < 0 || outcome.Score2 < 0 {
		return model.ErrInvalidScore
	}
	return nil
}

// ProcessResult awards 3 points for a win and 1 each for a draw, makes sure
// both players appear in the ranking, and returns their standings afterwards.
// Players are not checked for existence.
func (s *Service) ProcessResult(ctx context.Context, outcome model.MatchOutcome) (*model.MatchResult, error) {
	if err := Validate(outcome); err != nil {
		return nil, err
	}

	delta1, delta2 := outcome.Deltas()
	if delta1 > 0 {
		if _, err := s.ranking.Increment(ctx, outcome.PlayerID1, delta1); err != nil {
			return nil, err
		}
	}
	if delta2 > 0 {
		if _, err := s.ranking.Increment(ctx, outcome.PlayerID2, delta2); err != nil {
			return nil, err
		}
	}

	// the loser still gets an entry
	for _, id := range []model.PlayerID{outcome.PlayerID1, outcome.PlayerID2} {
		if err := s.ranking.EnsureMember(ctx, id); err != nil {
			return nil, err
		}
	}

	standing1, err := s.ranking.RankAndScore(ctx, outcome.PlayerID1)
	if err != nil {
		return nil, err
	}
	standing2, err := s.ranking.RankAndScore(ctx, outcome.PlayerID2)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordMatch(outcome.IsDraw())
	s.logger.Debug("match processed",
		slog.Int64("player1", int64(outcome.PlayerID1)),
		slog.Int64("player2", int64(outcome.PlayerID2)),
		slog.Int("score1", outcome.Score1),
		slog.Int("score2", outcome.Score2),
	)

	return &model.MatchResult{
		PlayerID1: outcome.PlayerID1,
		PlayerID2: outcome.PlayerID2,
		Score1:    outcome.Score1,
		Score2:    outcome.Score2,
		Rank1:     standing1.Rank,
		Rank2:     standing2.Rank,
		Points1:   standing1.Score,
		Points2:   standing2.Score,
	}, nil
}
