package model

// LeaderboardKey is the name of the sorted set holding every player's score
const LeaderboardKey = "leaderboard"

// ScoredMember is a raw sorted-set entry as returned by the store
type ScoredMember struct {
	Member string
	Score  int64
}

// RankingEntry is one resolved row of a leaderboard page
type RankingEntry struct {
	PlayerID PlayerID `json:"id"`
	Username string   `json:"username"`
	Rank     int64    `json:"rank"`
	Score    int64    `json:"score"`
}

// Standing is a player's position in the full ranking
type Standing struct {
	Score  int64
	Rank   int64
	Ranked bool // false when the player has no entry yet
}
