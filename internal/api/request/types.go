package request

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/mcoot/matchboard/internal/model"
)

// Int is a numeric field that also accepts a quoted number.
// Set reports whether the field was present and not null.
type Int struct {
	Value int64
	Set   bool
}

// UnmarshalJSON accepts 12, 12.0, "12" or null. Strings that are not numbers read as 0.
func (i *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = Int{}
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	*i = Int{Value: ParseInt(raw), Set: true}
	return nil
}

// ParseInt reads a decimal integer, truncating fractions. Anything unparsable is 0.
func ParseInt(s string) int64 {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}

// ActionRequest is the POST body. Which fields are required depends on Action.
type ActionRequest struct {
	Action string `json:"action"`

	// register, login, update
	Username *string `json:"username"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`

	// update
	ID    Int     `json:"id"`
	Token *string `json:"token"`

	// matchresult
	UserID1 Int `json:"userid1"`
	UserID2 Int `json:"userid2"`
	Score1  Int `json:"score1"`
	Score2  Int `json:"score2"`

	// simulate
	UserCount Int `json:"usercount"`
}

// HasRegisterFields reports whether every registration field is present
func (r *ActionRequest) HasRegisterFields() bool {
	return r.Username != nil && r.Password != nil && r.Name != nil && r.Surname != nil
}

// HasLoginFields reports whether the credentials are present
func (r *ActionRequest) HasLoginFields() bool {
	return r.Username != nil && r.Password != nil
}

// HasMatchFields reports whether both ids and both scores are present
func (r *ActionRequest) HasMatchFields() bool {
	return r.UserID1.Set && r.UserID2.Set && r.Score1.Set && r.Score2.Set
}

// MatchOutcome converts the match fields
func (r *ActionRequest) MatchOutcome() model.MatchOutcome {
	return model.MatchOutcome{
		PlayerID1: model.PlayerID(r.UserID1.Value),
		PlayerID2: model.PlayerID(r.UserID2.Value),
		Score1:    int(r.Score1.Value),
		Score2:    int(r.Score2.Value),
	}
}
