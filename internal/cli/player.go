package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/matchboard/internal/api/response"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerRegisterCmd())
	cmd.AddCommand(newPlayerLoginCmd())
	cmd.AddCommand(newPlayerUpdateCmd())
	cmd.AddCommand(newPlayerShowCmd())
	cmd.AddCommand(newPlayerWhoAmICmd())

	return cmd
}

func newPlayerRegisterCmd() *cobra.Command {
	var user, pass, name, surname string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new player account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --pass are required")
			}

			req := map[string]any{
				"action":   "register",
				"username": user,
				"password": pass,
				"name":     name,
				"surname":  surname,
			}
			var result response.Registration

			if err := client.Post(req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	cmd.Flags().StringVar(&name, "name", "", "First name")
	cmd.Flags().StringVar(&surname, "surname", "", "Surname")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --pass are required")
			}

			req := map[string]any{
				"action":   "login",
				"username": user,
				"password": pass,
			}
			var result response.Login

			if err := client.Post(req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerUpdateCmd() *cobra.Command {
	var id int64
	var user, pass, name, surname string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a player's profile",
		Long: `Update a player's profile.

Without --id the logged-in player (from the saved token) is updated.
Only the flags given are changed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"action": "update"}
			if cmd.Flags().Changed("id") {
				req["id"] = id
			} else if cfg.Token == "" {
				return fmt.Errorf("--id is required when not logged in")
			}

			fields := []struct {
				flag, key string
				value     *string
			}{
				{"user", "username", &user},
				{"pass", "password", &pass},
				{"name", "name", &name},
				{"surname", "surname", &surname},
			}
			for _, f := range fields {
				if cmd.Flags().Changed(f.flag) {
					req[f.key] = *f.value
				}
			}

			var result response.User
			if err := client.Post(req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Player id (defaults to the logged-in player)")
	cmd.Flags().StringVar(&user, "user", "", "New username")
	cmd.Flags().StringVar(&pass, "pass", "", "New password")
	cmd.Flags().StringVar(&name, "name", "", "New first name")
	cmd.Flags().StringVar(&surname, "surname", "", "New surname")

	return cmd
}

func newPlayerShowCmd() *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a player's details",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{
				"action": {"userdetails"},
				"id":     {strconv.FormatInt(id, 10)},
			}
			var result response.User

			if err := client.Get(params, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Player id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newPlayerWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return fmt.Errorf("not logged in")
			}

			var result response.User
			if err := client.Get(url.Values{"action": {"whoami"}}, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
