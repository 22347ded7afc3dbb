package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/matchboard/internal/model"
	"github.com/mcoot/matchboard/internal/storage"
)

// scanBatch is the COUNT hint used when walking player record keys
const scanBatch = 200

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	keys   keyspace
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, unavailable(err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		keys:   keyspace{prefix: cfg.KeyPrefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// unavailable tags a transport or server failure
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Player operations

func (s *Storage) NextPlayerID(ctx context.Context) (model.PlayerID, error) {
	id, err := s.client.Incr(ctx, s.keys.nextUserID()).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	return model.PlayerID(id), nil
}

// CreatePlayer writes the record and claims the username in one transaction.
// The username key is watched so a concurrent claim aborts this one.
func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := encodePlayer(player)
	if err != nil {
		return err
	}

	indexKey := s.keys.username(player.Username)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, indexKey).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return model.ErrUsernameExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.keys.user(player.ID), data, 0)
			pipe.Set(ctx, indexKey, player.ID.String(), 0)
			return nil
		})
		return err
	}, indexKey)

	return s.txError(err)
}

// UpdatePlayer rewrites the record and, on a username change, moves the index entry
func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player, previousUsername string) error {
	data, err := encodePlayer(player)
	if err != nil {
		return err
	}

	renamed := previousUsername != "" && previousUsername != player.Username
	if !renamed {
		if err := s.client.Set(ctx, s.keys.user(player.ID), data, 0).Err(); err != nil {
			return unavailable(err)
		}
		return nil
	}

	indexKey := s.keys.username(player.Username)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		owner, err := tx.Get(ctx, indexKey).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		case owner != player.ID.String():
			return model.ErrUsernameExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.keys.username(previousUsername))
			pipe.Set(ctx, indexKey, player.ID.String(), 0)
			pipe.Set(ctx, s.keys.user(player.ID), data, 0)
			return nil
		})
		return err
	}, indexKey)

	return s.txError(err)
}

// txError maps the outcome of a WATCH transaction
func (s *Storage) txError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrUsernameExists):
		return err
	case errors.Is(err, redis.TxFailedErr):
		// someone touched the username key between our check and EXEC
		return model.ErrUsernameExists
	default:
		return unavailable(err)
	}
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, s.keys.user(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, unavailable(err)
	}

	return decodePlayer(data)
}

func (s *Storage) GetPlayerIDByUsername(ctx context.Context, username string) (model.PlayerID, error) {
	raw, err := s.client.Get(ctx, s.keys.username(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, model.ErrUserNotFound
		}
		return 0, unavailable(err)
	}

	id, err := model.ParsePlayerID(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: username index %q: %v", model.ErrDecode, username, err)
	}
	return id, nil
}

// ListPlayerIDs walks every player record key with SCAN and returns the ids in ascending order
func (s *Storage) ListPlayerIDs(ctx context.Context) ([]model.PlayerID, error) {
	prefix := s.keys.userPrefix()
	var ids []model.PlayerID

	iter := s.client.Scan(ctx, 0, s.keys.userPattern(), scanBatch).Iterator()
	for iter.Next(ctx) {
		id, err := model.ParsePlayerID(strings.TrimPrefix(iter.Val(), prefix))
		if err != nil {
			continue // not a player record
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, unavailable(err)
	}

	// SCAN may return a key more than once
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return dedupe(ids), nil
}

func dedupe(ids []model.PlayerID) []model.PlayerID {
	out := ids[:0]
	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Token operations

func (s *Storage) SaveToken(ctx context.Context, token string, id model.PlayerID) error {
	if err := s.client.Set(ctx, s.keys.token(token), id.String(), 0).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Storage) GetTokenPlayerID(ctx context.Context, token string) (model.PlayerID, error) {
	raw, err := s.client.Get(ctx, s.keys.token(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, model.ErrTokenNotFound
		}
		return 0, unavailable(err)
	}

	id, err := model.ParsePlayerID(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: token: %v", model.ErrDecode, err)
	}
	return id, nil
}

// Ranking operations

// IncrementScore adds delta to the member's score with ZINCRBY, creating the entry if needed
func (s *Storage) IncrementScore(ctx context.Context, member string, delta int64) (int64, error) {
	score, err := s.client.ZIncrBy(ctx, s.keys.leaderboard(), float64(delta), member).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	return int64(score), nil
}

// AddMemberIfAbsent inserts the member at score 0 with ZADD NX.
// It reports whether the member was newly added.
func (s *Storage) AddMemberIfAbsent(ctx context.Context, member string) (bool, error) {
	added, err := s.client.ZAddNX(ctx, s.keys.leaderboard(), redis.Z{Score: 0, Member: member}).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return added > 0, nil
}

func (s *Storage) MemberScore(ctx context.Context, member string) (int64, bool, error) {
	score, err := s.client.ZScore(ctx, s.keys.leaderboard(), member).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, unavailable(err)
	}
	return int64(score), true, nil
}

// MemberRank returns the 0-based position in descending score order
func (s *Storage) MemberRank(ctx context.Context, member string) (int64, bool, error) {
	rank, err := s.client.ZRevRank(ctx, s.keys.leaderboard(), member).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, unavailable(err)
	}
	return rank, true, nil
}

// RangeByScoreDesc returns entries [start, stop] (inclusive, 0-based) ordered by score descending
func (s *Storage) RangeByScoreDesc(ctx context.Context, start, stop int64) ([]model.ScoredMember, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, s.keys.leaderboard(), start, stop).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	members := make([]model.ScoredMember, 0, len(zs))
	for _, z := range zs {
		members = append(members, model.ScoredMember{
			Member: memberString(z.Member),
			Score:  int64(z.Score),
		})
	}
	return members, nil
}

func memberString(m any) string {
	switch v := m.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
