package testutil

import (
	"context"
	"fmt"

	"github.com/mcoot/matchboard/internal/model"
	"github.com/mcoot/matchboard/internal/storage"
)

// FailingStorage wraps a storage and fails the operations named in FailOn
// with ErrStoreUnavailable. An empty FailOn fails everything.
type FailingStorage struct {
	storage.Storage
	FailOn map[string]bool
}

// NewFailingStorage wraps inner, failing only the named operations
func NewFailingStorage(inner storage.Storage, ops ...string) *FailingStorage {
	f := &FailingStorage{Storage: inner, FailOn: make(map[string]bool)}
	for _, op := range ops {
		f.FailOn[op] = true
	}
	return f
}

func (f *FailingStorage) fail(op string) error {
	if len(f.FailOn) == 0 || f.FailOn[op] {
		return fmt.Errorf("%w: %s: connection refused", model.ErrStoreUnavailable, op)
	}
	return nil
}

func (f *FailingStorage) Ping(ctx context.Context) error {
	if err := f.fail("Ping"); err != nil {
		return err
	}
	return f.Storage.Ping(ctx)
}

func (f *FailingStorage) NextPlayerID(ctx context.Context) (model.PlayerID, error) {
	if err := f.fail("NextPlayerID"); err != nil {
		return 0, err
	}
	return f.Storage.NextPlayerID(ctx)
}

func (f *FailingStorage) CreatePlayer(ctx context.Context, player *model.Player) error {
	if err := f.fail("CreatePlayer"); err != nil {
		return err
	}
	return f.Storage.CreatePlayer(ctx, player)
}

func (f *FailingStorage) UpdatePlayer(ctx context.Context, player *model.Player, previousUsername string) error {
	if err := f.fail("UpdatePlayer"); err != nil {
		return err
	}
	return f.Storage.UpdatePlayer(ctx, player, previousUsername)
}

func (f *FailingStorage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	if err := f.fail("GetPlayer"); err != nil {
		return nil, err
	}
	return f.Storage.GetPlayer(ctx, id)
}

func (f *FailingStorage) GetPlayerIDByUsername(ctx context.Context, username string) (model.PlayerID, error) {
	if err := f.fail("GetPlayerIDByUsername"); err != nil {
		return 0, err
	}
	return f.Storage.GetPlayerIDByUsername(ctx, username)
}

func (f *FailingStorage) ListPlayerIDs(ctx context.Context) ([]model.PlayerID, error) {
	if err := f.fail("ListPlayerIDs"); err != nil {
		return nil, err
	}
	return f.Storage.ListPlayerIDs(ctx)
}

func (f *FailingStorage) SaveToken(ctx context.Context, token string, id model.PlayerID) error {
	if err := f.fail("SaveToken"); err != nil {
		return err
	}
	return f.Storage.SaveToken(ctx, token, id)
}

func (f *FailingStorage) GetTokenPlayerID(ctx context.Context, token string) (model.PlayerID, error) {
	if err := f.fail("GetTokenPlayerID"); err != nil {
		return 0, err
	}
	return f.Storage.GetTokenPlayerID(ctx, token)
}

func (f *FailingStorage) IncrementScore(ctx context.Context, member string, delta int64) (int64, error) {
	if err := f.fail("IncrementScore"); err != nil {
		return 0, err
	}
	return f.Storage.IncrementScore(ctx, member, delta)
}

func (f *FailingStorage) AddMemberIfAbsent(ctx context.Context, member string) (bool, error) {
	if err := f.fail("AddMemberIfAbsent"); err != nil {
		return false, err
	}
	return f.Storage.AddMemberIfAbsent(ctx, member)
}

func (f *FailingStorage) MemberScore(ctx context.Context, member string) (int64, bool, error) {
	if err := f.fail("MemberScore"); err != nil {
		return 0, false, err
	}
	return f.Storage.MemberScore(ctx, member)
}

func (f *FailingStorage) MemberRank(ctx context.Context, member string) (int64, bool, error) {
	if err := f.fail("MemberRank"); err != nil {
		return 0, false, err
	}
	return f.Storage.MemberRank(ctx, member)
}

func (f *FailingStorage) RangeByScoreDesc(ctx context.Context, start, stop int64) ([]model.ScoredMember, error) {
	if err := f.fail("RangeByScoreDesc"); err != nil {
		return nil, err
	}
	return f.Storage.RangeByScoreDesc(ctx, start, stop)
}
