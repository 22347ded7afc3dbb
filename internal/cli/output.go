package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mcoot/matchboard/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.User:
		o.printUser(v)
	case response.Registration:
		o.printRegistration(v)
	case response.Login:
		o.printLogin(v)
	case response.MatchResult:
		o.printMatchResult(v)
	case []response.LeaderboardEntry:
		o.printLeaderboard(v)
	case response.Simulation:
		o.printSimulation(v)
	case response.Health:
		o.printHealth(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printUser(u response.User) {
	_, _ = fmt.Fprintf(o.w, "Player: %s (%d)\n", u.Username, u.ID)
	_, _ = fmt.Fprintf(o.w, "Name: %s %s\n", u.Name, u.Surname)
	if !u.CreatedAt.IsZero() {
		_, _ = fmt.Fprintf(o.w, "Registered: %s\n", u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func (o *Output) printRegistration(r response.Registration) {
	_, _ = fmt.Fprintf(o.w, "Registered %s with id %d\n", r.Username, r.UserID)
}

func (o *Output) printLogin(l response.Login) {
	o.printUser(l.User)
	_, _ = fmt.Fprintf(o.w, "Token: %s\n", l.Token)
}

func (o *Output) printMatchResult(m response.MatchResult) {
	_, _ = fmt.Fprintf(o.w, "Match: %d vs %d (%d-%d)\n", m.UserID1, m.UserID2, m.Score1, m.Score2)
	_, _ = fmt.Fprintf(o.w, "  %d: rank %d, %d points\n", m.UserID1, m.Rank1, m.Points1)
	_, _ = fmt.Fprintf(o.w, "  %d: rank %d, %d points\n", m.UserID2, m.Rank2, m.Points2)
}

func (o *Output) printLeaderboard(entries []response.LeaderboardEntry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(o.w, "No entries")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tID\tUSERNAME\tSCORE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%d\n", e.Rank, e.ID, e.Username, e.Score)
	}
	_ = tw.Flush()
}

func (o *Output) printSimulation(s response.Simulation) {
	_, _ = fmt.Fprintln(o.w, s.Message)
	_, _ = fmt.Fprintf(o.w, "Users: %d\n", s.Users)
	_, _ = fmt.Fprintf(o.w, "Matches: %d\n", s.Matches)
	_, _ = fmt.Fprintf(o.w, "Backfilled: %d\n", s.Backfilled)
}

func (o *Output) printHealth(h response.Health) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
