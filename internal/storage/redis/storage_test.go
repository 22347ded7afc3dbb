package redis

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/matchboard/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) newPlayer(id model.PlayerID, username string) *model.Player {
	return &model.Player{
		ID:        id,
		Username:  username,
		Password:  "hash-" + username,
		Name:      "Name",
		Surname:   "Surname",
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Player tests

func (s *StorageSuite) TestNextPlayerIDIsMonotonic() {
	first, err := s.storage.NextPlayerID(s.ctx)
	s.Require().NoError(err)
	second, err := s.storage.NextPlayerID(s.ctx)
	s.Require().NoError(err)

	s.Equal(model.PlayerID(1), first)
	s.Equal(model.PlayerID(2), second)

	raw, err := s.mini.Get("nextUserId")
	s.Require().NoError(err)
	s.Equal("2", raw)
}

func (s *StorageSuite) TestCreateAndGetPlayer() {
	player := s.newPlayer(1, "alice")

	err := s.storage.CreatePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(player.Username, retrieved.Username)
	s.Equal(player.Password, retrieved.Password)
	s.Equal(player.Surname, retrieved.Surname)
}

func (s *StorageSuite) TestCreatePlayerWritesLayout() {
	_ = s.storage.CreatePlayer(s.ctx, s.newPlayer(7, "alice"))

	idx, err := s.mini.Get("username:alice")
	s.Require().NoError(err)
	s.Equal("7", idx)

	record, err := s.mini.Get("user:7")
	s.Require().NoError(err)
	s.Contains(record, `"username":"alice"`)
	s.Contains(record, `"password":"hash-alice"`)
}

func (s *StorageSuite) TestCreatePlayerRejectsTakenUsername() {
	_ = s.storage.CreatePlayer(s.ctx, s.newPlayer(1, "alice"))

	err := s.storage.CreatePlayer(s.ctx, s.newPlayer(2, "alice"))
	s.ErrorIs(err, model.ErrUsernameExists)

	// The losing record must not be written
	s.False(s.mini.Exists("user:2"))
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, 99)
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestGetPlayerCorruptRecord() {
	s.Require().NoError(s.mini.Set("user:5", "{not json"))

	_, err := s.storage.GetPlayer(s.ctx, 5)
	s.ErrorIs(err, model.ErrDecode)
}

func (s *StorageSuite) TestGetPlayerIDByUsername() {
	_ = s.storage.CreatePlayer(s.ctx, s.newPlayer(3, "carol"))

	id, err := s.storage.GetPlayerIDByUsername(s.ctx, "carol")
	s.Require().NoError(err)
	s.Equal(model.PlayerID(3), id)

	_, err = s.storage.GetPlayerIDByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestUpdatePlayerWithoutRename() {
	player := s.newPlayer(1, "alice")
	_ = s.storage.CreatePlayer(s.ctx, player)

	player.Name = "Alicia"
	err := s.storage.UpdatePlayer(s.ctx, player, "alice")
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("Alicia", retrieved.Name)

	idx, _ := s.mini.Get("username:alice")
	s.Equal("1", idx)
}

func (s *StorageSuite) TestUpdatePlayerRenameMovesIndex() {
	player := s.newPlayer(1, "alice")
	_ = s.storage.CreatePlayer(s.ctx, player)

	player.Username = "alicia"
	err := s.storage.UpdatePlayer(s.ctx, player, "alice")
	s.Require().NoError(err)

	s.False(s.mini.Exists("username:alice"))
	idx, err := s.mini.Get("username:alicia")
	s.Require().NoError(err)
	s.Equal("1", idx)
}

func (s *StorageSuite) TestUpdatePlayerRenameToTakenUsername() {
	alice := s.newPlayer(1, "alice")
	_ = s.storage.CreatePlayer(s.ctx, alice)
	_ = s.storage.CreatePlayer(s.ctx, s.newPlayer(2, "bob"))

	alice.Username = "bob"
	err := s.storage.UpdatePlayer(s.ctx, alice, "alice")
	s.ErrorIs(err, model.ErrUsernameExists)

	idx, _ := s.mini.Get("username:bob")
	s.Equal("2", idx)
	s.True(s.mini.Exists("username:alice"))
}

func (s *StorageSuite) TestListPlayerIDs() {
	for _, id := range []model.PlayerID{3, 1, 12} {
		_ = s.storage.CreatePlayer(s.ctx, s.newPlayer(id, "user"+id.String()))
	}
	s.Require().NoError(s.mini.Set("user:notanid", "{}"))

	ids, err := s.storage.ListPlayerIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{1, 3, 12}, ids)
}

func (s *StorageSuite) TestListPlayerIDsEmpty() {
	ids, err := s.storage.ListPlayerIDs(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

// Token tests

func (s *StorageSuite) TestSaveAndGetToken() {
	err := s.storage.SaveToken(s.ctx, "abc123", 4)
	s.Require().NoError(err)

	id, err := s.storage.GetTokenPlayerID(s.ctx, "abc123")
	s.Require().NoError(err)
	s.Equal(model.PlayerID(4), id)

	raw, _ := s.mini.Get("token:abc123")
	s.Equal("4", raw)
}

func (s *StorageSuite) TestGetTokenNotFound() {
	_, err := s.storage.GetTokenPlayerID(s.ctx, "missing")
	s.ErrorIs(err, model.ErrTokenNotFound)
}

func (s *StorageSuite) TestTokenHasNoTTL() {
	_ = s.storage.SaveToken(s.ctx, "abc123", 4)
	s.Equal(time.Duration(0), s.mini.TTL("token:abc123"))
}

// Ranking tests

func (s *StorageSuite) TestIncrementScoreCreatesAndAccumulates() {
	score, err := s.storage.IncrementScore(s.ctx, "1", 3)
	s.Require().NoError(err)
	s.Equal(int64(3), score)

	score, err = s.storage.IncrementScore(s.ctx, "1", 1)
	s.Require().NoError(err)
	s.Equal(int64(4), score)

	stored, err := s.mini.ZScore("leaderboard", "1")
	s.Require().NoError(err)
	s.Equal(4.0, stored)
}

func (s *StorageSuite) TestAddMemberIfAbsentNeverClobbers() {
	_, _ = s.storage.IncrementScore(s.ctx, "1", 6)

	added, err := s.storage.AddMemberIfAbsent(s.ctx, "1")
	s.Require().NoError(err)
	s.False(added)

	score, found, err := s.storage.MemberScore(s.ctx, "1")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(int64(6), score)
}

func (s *StorageSuite) TestAddMemberIfAbsentInsertsZero() {
	added, err := s.storage.AddMemberIfAbsent(s.ctx, "2")
	s.Require().NoError(err)
	s.True(added)

	score, found, err := s.storage.MemberScore(s.ctx, "2")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(int64(0), score)
}

func (s *StorageSuite) TestMemberScoreMissing() {
	score, found, err := s.storage.MemberScore(s.ctx, "42")
	s.Require().NoError(err)
	s.False(found)
	s.Equal(int64(0), score)
}

func (s *StorageSuite) TestMemberRank() {
	_, _ = s.storage.IncrementScore(s.ctx, "1", 1)
	_, _ = s.storage.IncrementScore(s.ctx, "2", 5)
	_, _ = s.storage.IncrementScore(s.ctx, "3", 3)

	rank, found, err := s.storage.MemberRank(s.ctx, "2")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(int64(0), rank)

	rank, _, _ = s.storage.MemberRank(s.ctx, "1")
	s.Equal(int64(2), rank)

	_, found, err = s.storage.MemberRank(s.ctx, "9")
	s.Require().NoError(err)
	s.False(found)
}

func (s *StorageSuite) TestRangeByScoreDesc() {
	_, _ = s.storage.IncrementScore(s.ctx, "1", 1)
	_, _ = s.storage.IncrementScore(s.ctx, "2", 5)
	_, _ = s.storage.IncrementScore(s.ctx, "3", 3)

	members, err := s.storage.RangeByScoreDesc(s.ctx, 0, 1)
	s.Require().NoError(err)
	s.Equal([]model.ScoredMember{
		{Member: "2", Score: 5},
		{Member: "3", Score: 3},
	}, members)

	members, err = s.storage.RangeByScoreDesc(s.ctx, 2, 3)
	s.Require().NoError(err)
	s.Equal([]model.ScoredMember{{Member: "1", Score: 1}}, members)
}

func (s *StorageSuite) TestRangeByScoreDescEmpty() {
	members, err := s.storage.RangeByScoreDesc(s.ctx, 0, 9)
	s.Require().NoError(err)
	s.Empty(members)
}

// Key prefix and failure tests

func (s *StorageSuite) TestKeyPrefixWithGlobCharacters() {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	cfg := DefaultConfig()
	cfg.KeyPrefix = "mb[1]*?:"
	prefixed := NewWithClient(client, cfg)
	defer func() { _ = prefixed.Close() }()

	_ = prefixed.CreatePlayer(s.ctx, s.newPlayer(1, "alice"))
	// would match the unescaped pattern
	s.Require().NoError(s.mini.Set("mb1xy:user:9", "{}"))

	s.Equal(`mb\[1\]\*\?:user:*`, prefixed.keys.userPattern())

	ids, err := prefixed.ListPlayerIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{1}, ids)
}

func (s *StorageSuite) TestKeyPrefix() {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	cfg := DefaultConfig()
	cfg.KeyPrefix = "mb:"
	prefixed := NewWithClient(client, cfg)
	defer func() { _ = prefixed.Close() }()

	_ = prefixed.CreatePlayer(s.ctx, s.newPlayer(1, "alice"))
	_, _ = prefixed.IncrementScore(s.ctx, "1", 3)

	s.True(s.mini.Exists("mb:user:1"))
	s.True(s.mini.Exists("mb:username:alice"))
	s.True(s.mini.Exists("mb:leaderboard"))
	s.False(s.mini.Exists("user:1"))

	ids, err := prefixed.ListPlayerIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{1}, ids)
}

func (s *StorageSuite) TestStoreUnavailable() {
	s.mini.Close()

	_, err := s.storage.NextPlayerID(s.ctx)
	s.ErrorIs(err, model.ErrStoreUnavailable)

	_, err = s.storage.IncrementScore(s.ctx, "1", 3)
	s.ErrorIs(err, model.ErrStoreUnavailable)

	s.ErrorIs(s.storage.Ping(s.ctx), model.ErrStoreUnavailable)
}

// Concurrency tests

func (s *StorageSuite) TestConcurrentIncrementsAndInsertsNeverLoseScore() {
	const workers = 50

	var wg sync.WaitGroup
	totals := make(chan int64, workers)
	errs := make(chan error, 2*workers)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			score, err := s.storage.IncrementScore(s.ctx, "7", 3)
			if err != nil {
				errs <- err
				return
			}
			totals <- score
		}()
		go func() {
			defer wg.Done()
			if _, err := s.storage.AddMemberIfAbsent(s.ctx, "7"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(totals)
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	// every increment saw a distinct running total, so no insert reset the score
	seen := make([]int64, 0, workers)
	for total := range totals {
		seen = append(seen, total)
	}
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })
	s.Require().Len(seen, workers)
	for i, total := range seen {
		s.Equal(int64(3*(i+1)), total)
	}

	score, found, err := s.storage.MemberScore(s.ctx, "7")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(int64(3*workers), score)
}
