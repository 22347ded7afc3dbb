// Package ranking owns the leaderboard sorted set: atomic score updates,
// zero-score membership and rank-annotated pages.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/mcoot/matchboard/internal/metrics"
	"github.com/mcoot/matchboard/internal/model"
	"github.com/mcoot/matchboard/internal/storage"
)

// Reasons an entry is left off a page
const (
	SkipInvalidMember = "invalid_member"
	SkipMissingRecord = "missing_record"
	SkipCorruptRecord = "corrupt_record"
)

// unknownUsername is shown when a record resolves but carries no username
const unknownUsername = "Unknown"

// Config holds paging limits
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultConfig returns default paging limits
func DefaultConfig() Config {
	return Config{
		DefaultPageSize: 10,
		MaxPageSize:     100,
	}
}

// Service is the ranking index
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
	metrics metrics.Recorder
	cfg     Config
}

// New creates a new ranking Service
func New(storage storage.Storage, logger *slog.Logger, recorder metrics.Recorder, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaults.DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = defaults.MaxPageSize
	}
	return &Service{
		storage: storage,
		logger:  logger,
		metrics: recorder,
		cfg:     cfg,
	}
}

// Increment atomically adds delta to the player's score, creating the entry if absent.
// It returns the new score.
func (s *Service) Increment(ctx context.Context, id model.PlayerID, delta int64) (int64, error) {
	score, err := s.storage.IncrementScore(ctx, id.String(), delta)
	if err != nil {
		return 0, fmt.Errorf("incrementing score of player %d: %w", id, err)
	}
	return score, nil
}

// EnsureMember gives the player a zero-score entry unless one already exists
func (s *Service) EnsureMember(ctx context.Context, id model.PlayerID) error {
	if _, err := s.storage.AddMemberIfAbsent(ctx, id.String()); err != nil {
		return fmt.Errorf("adding player %d to ranking: %w", id, err)
	}
	return nil
}

// RankAndScore returns the player's current score and 1-based rank.
// A player without an entry gets score 0 and Ranked=false.
func (s *Service) RankAndScore(ctx context.Context, id model.PlayerID) (model.Standing, error) {
	member := id.String()

	score, found, err := s.storage.MemberScore(ctx, member)
	if err != nil {
		return model.Standing{}, fmt.Errorf("reading score of player %d: %w", id, err)
	}
	if !found {
		return model.Standing{}, nil
	}

	rank, found, err := s.storage.MemberRank(ctx, member)
	if err != nil {
		return model.Standing{}, fmt.Errorf("reading rank of player %d: %w", id, err)
	}
	if !found {
		// removed between the two reads; entries are never removed individually
		return model.Standing{Score: score}, nil
	}

	return model.Standing{Score: score, Rank: rank + 1, Ranked: true}, nil
}

// Page returns one page of the ranking, best score first.
// Entries whose player record cannot be resolved are logged and skipped
// without consuming a rank.
func (s *Service) Page(ctx context.Context, page, size int) ([]model.RankingEntry, error) {
	page, size = s.normalize(page, size)

	// an offset past MaxInt64 cannot hold entries
	if int64(page-1) > (math.MaxInt64-int64(size))/int64(size) {
		return []model.RankingEntry{}, nil
	}

	start := int64(page-1) * int64(size)
	stop := start + int64(size) - 1

	members, err := s.storage.RangeByScoreDesc(ctx, start, stop)
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}

	entries := make([]model.RankingEntry, 0, len(members))
	rank := start + 1
	for _, m := range members {
		entry, reason, err := s.resolve(ctx, m)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			s.logger.Warn("skipping leaderboard entry",
				slog.String("member", m.Member),
				slog.String("reason", reason),
			)
			s.metrics.RecordLeaderboardSkip(reason)
			continue
		}

		entry.Rank = rank
		entries = append(entries, entry)
		rank++
	}

	return entries, nil
}

// resolve turns a raw member into an entry, or names the reason it cannot be shown
func (s *Service) resolve(ctx context.Context, m model.ScoredMember) (model.RankingEntry, string, error) {
	id, err := model.ParsePlayerID(m.Member)
	if err != nil || id < 1 {
		return model.RankingEntry{}, SkipInvalidMember, nil
	}

	player, err := s.storage.GetPlayer(ctx, id)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return model.RankingEntry{}, SkipMissingRecord, nil
	case errors.Is(err, model.ErrDecode):
		return model.RankingEntry{}, SkipCorruptRecord, nil
	case err != nil:
		return model.RankingEntry{}, "", fmt.Errorf("resolving player %d: %w", id, err)
	}

	username := player.Username
	if username == "" {
		username = unknownUsername
	}

	return model.RankingEntry{
		PlayerID: id,
		Username: username,
		Score:    m.Score,
	}, "", nil
}

func (s *Service) normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = s.cfg.DefaultPageSize
	}
	if size > s.cfg.MaxPageSize {
		s.logger.Debug("page size clamped",
			slog.Int("requested", size),
			slog.Int("max", s.cfg.MaxPageSize),
		)
		size = s.cfg.MaxPageSize
	}
	return page, size
}

// BackfillZeroScoreMembers inserts every listed player that has no entry yet with score 0.
// Existing scores are left untouched. It returns how many entries were added.
func (s *Service) BackfillZeroScoreMembers(ctx context.Context, ids []model.PlayerID) (int, error) {
	added := 0
	for _, id := range ids {
		ok, err := s.storage.AddMemberIfAbsent(ctx, id.String())
		if err != nil {
			return added, fmt.Errorf("backfilling player %d: %w", id, err)
		}
		if ok {
			added++
		}
	}
	if added > 0 {
		s.logger.Info("backfilled ranking", slog.Int("added", added), slog.Int("checked", len(ids)))
	}
	return added, nil
}
