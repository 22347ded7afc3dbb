package model

// Points awarded per match outcome
const (
	WinPoints  = 3
	DrawPoints = 1
)

// MatchOutcome is a reported 1v1 result. It is never persisted.
type MatchOutcome struct {
	PlayerID1 PlayerID
	PlayerID2 PlayerID
	Score1    int
	Score2    int
}

// Deltas returns the points each player gains from the outcome
func (o MatchOutcome) Deltas() (int64, int64) {
	switch {
	case o.Score1 > o.Score2:
		return WinPoints, 0
	case o.Score1 < o.Score2:
		return 0, WinPoints
	default:
		return DrawPoints, DrawPoints
	}
}

// IsDraw reports whether both sides scored the same
func (o MatchOutcome) IsDraw() bool {
	return o.Score1 == o.Score2
}

// MatchResult is the outcome echoed back with post-update standings
type MatchResult struct {
	PlayerID1 PlayerID
	PlayerID2 PlayerID
	Score1    int
	Score2    int
	Rank1     int64
	Rank2     int64
	Points1   int64
	Points2   int64
}
