package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/matchboard/internal/model"
	"github.com/mcoot/matchboard/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// A single mutex gives each call the same all-or-nothing behavior as one Redis command.
type Storage struct {
	mu sync.RWMutex

	nextID        model.PlayerID
	players       map[model.PlayerID]*model.Player
	usernameIndex map[string]model.PlayerID
	tokens        map[string]model.PlayerID
	scores        map[string]int64

	// corrupt marks ids whose record should fail to decode (test hook)
	corrupt map[model.PlayerID]bool
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:       make(map[model.PlayerID]*model.Player),
		usernameIndex: make(map[string]model.PlayerID),
		tokens:        make(map[string]model.PlayerID),
		scores:        make(map[string]int64),
		corrupt:       make(map[model.PlayerID]bool),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

// Player operations

func (s *Storage) NextPlayerID(ctx context.Context) (model.PlayerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID, nil
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernameIndex[player.Username]; taken {
		return model.ErrUsernameExists
	}
	cp := *player
	s.players[player.ID] = &cp
	s.usernameIndex[player.Username] = player.ID
	return nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player, previousUsername string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if previousUsername != "" && previousUsername != player.Username {
		if owner, taken := s.usernameIndex[player.Username]; taken && owner != player.ID {
			return model.ErrUsernameExists
		}
		delete(s.usernameIndex, previousUsername)
		s.usernameIndex[player.Username] = player.ID
	}

	cp := *player
	s.players[player.ID] = &cp
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.corrupt[id] {
		return nil, model.ErrDecode
	}
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) GetPlayerIDByUsername(ctx context.Context, username string) (model.PlayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	return id, nil
}

func (s *Storage) ListPlayerIDs(ctx context.Context) ([]model.PlayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.PlayerID, 0, len(s.players)+len(s.corrupt))
	for id := range s.players {
		ids = append(ids, id)
	}
	for id := range s.corrupt {
		if _, ok := s.players[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Token operations

func (s *Storage) SaveToken(ctx context.Context, token string, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = id
	return nil
}

func (s *Storage) GetTokenPlayerID(ctx context.Context, token string) (model.PlayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[token]
	if !ok {
		return 0, model.ErrTokenNotFound
	}
	return id, nil
}

// Ranking operations

func (s *Storage) IncrementScore(ctx context.Context, member string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[member] += delta
	return s.scores[member], nil
}

func (s *Storage) AddMemberIfAbsent(ctx context.Context, member string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scores[member]; ok {
		return false, nil
	}
	s.scores[member] = 0
	return true, nil
}

func (s *Storage) MemberScore(ctx context.Context, member string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[member]
	return score, ok, nil
}

func (s *Storage) MemberRank(ctx context.Context, member string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.scores[member]; !ok {
		return 0, false, nil
	}
	for i, m := range s.sortedLocked() {
		if m.Member == member {
			return int64(i), true, nil
		}
	}
	return 0, false, nil
}

func (s *Storage) RangeByScoreDesc(ctx context.Context, start, stop int64) ([]model.ScoredMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedLocked()
	n := int64(len(all))
	if start < 0 || start >= n || stop < start {
		return []model.ScoredMember{}, nil
	}
	if stop >= n {
		stop = n - 1
	}
	return append([]model.ScoredMember(nil), all[start:stop+1]...), nil
}

// sortedLocked orders members like ZREVRANGE: score descending, ties by member descending
func (s *Storage) sortedLocked() []model.ScoredMember {
	all := make([]model.ScoredMember, 0, len(s.scores))
	for m, score := range s.scores {
		all = append(all, model.ScoredMember{Member: m, Score: score})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].Member > all[j].Member
	})
	return all
}

// Test hooks

// PutRawPlayer stores a record without touching the username index
func (s *Storage) PutRawPlayer(player *model.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *player
	s.players[player.ID] = &cp
}

// MarkCorrupt makes GetPlayer fail to decode the given id
func (s *Storage) MarkCorrupt(id model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt[id] = true
}
