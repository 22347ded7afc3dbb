package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/matchboard/internal/api/response"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match commands",
	}

	cmd.AddCommand(newMatchReportCmd())

	return cmd
}

func newMatchReportCmd() *cobra.Command {
	var player1, player2 int64
	var score1, score2 int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report the result of a match between two players",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"action":  "matchresult",
				"userid1": player1,
				"userid2": player2,
				"score1":  score1,
				"score2":  score2,
			}
			var result response.MatchResult

			if err := client.Post(req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&player1, "player1", 0, "First player id (required)")
	cmd.Flags().Int64Var(&player2, "player2", 0, "Second player id (required)")
	cmd.Flags().IntVar(&score1, "score1", 0, "First player's score (required)")
	cmd.Flags().IntVar(&score2, "score2", 0, "Second player's score (required)")
	for _, name := range []string{"player1", "player2", "score1", "score2"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
