package model

import (
	"strconv"
	"time"
)

// PlayerID is the store-assigned numeric id of a player (monotonic, starts at 1)
type PlayerID int64

// String returns the decimal form used in store keys and sorted-set members
func (id PlayerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParsePlayerID parses a decimal player id
func ParsePlayerID(s string) (PlayerID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return PlayerID(n), nil
}

// Player is the persisted identity record
// Password holds the bcrypt hash and is blanked in every public view
type Player struct {
	ID        PlayerID  `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns a copy with the password hash removed
func (p *Player) Public() *Player {
	cp := *p
	cp.Password = ""
	return &cp
}
