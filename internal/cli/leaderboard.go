package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/matchboard/internal/api/response"
)

func newLeaderboardCmd() *cobra.Command {
	var page, count int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show a page of the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{
				"action": {"leaderboard"},
				"page":   {strconv.Itoa(page)},
				"count":  {strconv.Itoa(count)},
			}
			var result []response.LeaderboardEntry

			if err := client.Get(params, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&count, "count", 10, "Entries per page")

	return cmd
}
