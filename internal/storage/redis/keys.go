package redis

import (
	"fmt"
	"strings"

	"github.com/mcoot/matchboard/internal/model"
)

// keyspace builds the store keys, optionally under a prefix
type keyspace struct {
	prefix string
}

// user returns the key holding a player's JSON record
func (k keyspace) user(id model.PlayerID) string {
	return fmt.Sprintf("%suser:%d", k.prefix, id)
}

// globEscaper quotes SCAN MATCH metacharacters
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// userPattern matches every player record key for SCAN; the prefix is matched literally
func (k keyspace) userPattern() string {
	return globEscaper.Replace(k.prefix) + "user:*"
}

// userPrefix is the part of a record key before the id
func (k keyspace) userPrefix() string {
	return k.prefix + "user:"
}

// username returns the key for the username -> player id index
func (k keyspace) username(username string) string {
	return fmt.Sprintf("%susername:%s", k.prefix, username)
}

// token returns the key binding a login token to a player id
func (k keyspace) token(token string) string {
	return fmt.Sprintf("%stoken:%s", k.prefix, token)
}

// nextUserID returns the id counter key
func (k keyspace) nextUserID() string {
	return k.prefix + "nextUserId"
}

// leaderboard returns the sorted set key
func (k keyspace) leaderboard() string {
	return k.prefix + model.LeaderboardKey
}
