package response

import (
	"time"

	"github.com/mcoot/matchboard/internal/model"
	"github.com/mcoot/matchboard/internal/services/simulation"
	"github.com/mcoot/matchboard/internal/services/users"
)

// Envelope wraps every action response
type Envelope struct {
	Status  bool   `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// User is a player record as returned to clients. Password is always empty.
type User struct {
	ID        model.PlayerID `json:"id"`
	Username  string         `json:"username"`
	Name      string         `json:"name"`
	Password  string         `json:"password"`
	Surname   string         `json:"surname"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UserFromModel converts a model.Player, dropping the hash
func UserFromModel(p *model.Player) User {
	return User{
		ID:        p.ID,
		Username:  p.Username,
		Name:      p.Name,
		Surname:   p.Surname,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Registration is the response for register
type Registration struct {
	UserID   model.PlayerID `json:"userId"`
	Username string         `json:"username"`
	Name     string         `json:"name"`
	Surname  string         `json:"surname"`
}

// RegistrationFromModel converts a freshly registered player
func RegistrationFromModel(p *model.Player) Registration {
	return Registration{
		UserID:   p.ID,
		Username: p.Username,
		Name:     p.Name,
		Surname:  p.Surname,
	}
}

// Login is the response for login
type Login struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// LoginFromSession converts a users.Session
func LoginFromSession(s *users.Session) Login {
	return Login{
		User:  UserFromModel(s.Player),
		Token: s.Token,
	}
}

// MatchResult echoes the match with both players' standings afterwards
type MatchResult struct {
	UserID1 model.PlayerID `json:"userid1"`
	UserID2 model.PlayerID `json:"userid2"`
	Score1  int            `json:"score1"`
	Score2  int            `json:"score2"`
	Rank1   int64          `json:"rank1"`
	Rank2   int64          `json:"rank2"`
	Points1 int64          `json:"points1"`
	Points2 int64          `json:"points2"`
}

// MatchResultFromModel converts a model.MatchResult
func MatchResultFromModel(r *model.MatchResult) MatchResult {
	return MatchResult{
		UserID1: r.PlayerID1,
		UserID2: r.PlayerID2,
		Score1:  r.Score1,
		Score2:  r.Score2,
		Rank1:   r.Rank1,
		Rank2:   r.Rank2,
		Points1: r.Points1,
		Points2: r.Points2,
	}
}

// LeaderboardEntry is one row of a leaderboard page
type LeaderboardEntry struct {
	ID       model.PlayerID `json:"id"`
	Username string         `json:"username"`
	Rank     int64          `json:"rank"`
	Score    int64          `json:"score"`
}

// LeaderboardFromModel converts a page, never returning nil
func LeaderboardFromModel(entries []model.RankingEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{
			ID:       e.PlayerID,
			Username: e.Username,
			Rank:     e.Rank,
			Score:    e.Score,
		}
	}
	return out
}

// Simulation is the response for simulate
type Simulation struct {
	Status     bool   `json:"status"`
	Message    string `json:"message"`
	Users      int    `json:"users"`
	Matches    int    `json:"matches"`
	Backfilled int    `json:"backfilled"`
}

// SimulationFromReport converts a simulation.Report
func SimulationFromReport(r *simulation.Report) Simulation {
	return Simulation{
		Status:     true,
		Message:    r.Message,
		Users:      r.Users,
		Matches:    r.Matches,
		Backfilled: r.Backfilled,
	}
}

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}
