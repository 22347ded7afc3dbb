package storage

import (
	"context"

	"github.com/mcoot/matchboard/internal/model"
)

// Storage defines the interface for data persistence.
// Every mutating call maps to a single atomic command (or one MULTI block) on the backing store.
type Storage interface {
	// Player operations
	NextPlayerID(ctx context.Context) (model.PlayerID, error)
	CreatePlayer(ctx context.Context, player *model.Player) error
	UpdatePlayer(ctx context.Context, player *model.Player, previousUsername string) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerIDByUsername(ctx context.Context, username string) (model.PlayerID, error)
	ListPlayerIDs(ctx context.Context) ([]model.PlayerID, error)

	// Token operations
	SaveToken(ctx context.Context, token string, id model.PlayerID) error
	GetTokenPlayerID(ctx context.Context, token string) (model.PlayerID, error)

	// Ranking operations
	IncrementScore(ctx context.Context, member string, delta int64) (int64, error)
	AddMemberIfAbsent(ctx context.Context, member string) (bool, error)
	MemberScore(ctx context.Context, member string) (int64, bool, error)
	MemberRank(ctx context.Context, member string) (int64, bool, error)
	RangeByScoreDesc(ctx context.Context, start, stop int64) ([]model.ScoredMember, error)

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error
}
