package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/matchboard/internal/api/response"
)

func newSimulateCmd() *cobra.Command {
	var users int

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Register synthetic players and play a full round robin",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"action":    "simulate",
				"usercount": users,
			}
			var result response.Simulation

			if err := client.Post(req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&users, "users", 0, "Number of players to create (required)")
	_ = cmd.MarkFlagRequired("users")

	return cmd
}
