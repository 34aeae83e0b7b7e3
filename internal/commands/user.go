package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/auth"
	"github.com/planora/planora/internal/db"
)

func newUserCmd(f *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserAddCmd(f))
	return cmd
}

func newUserAddCmd(f *globalFlags) *cobra.Command {
	var email, password, first, last string

	cmd := &cobra.Command{
		Use:   "add [username]",
		Short: "Create an account",
		Long: `Create an account. The password is read from stdin when --password is not given.

Examples:
  planora user add ada --email ada@example.com
  echo "s3cret-pass" | planora user add ada --email ada@example.com`,
		Args: cobra.ExactArgs(1),
		RunE: f.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			user, err := a.store.CreateUser(cmd.Context(), db.CreateUserRequest{
				Username:     args[0],
				Email:        email,
				PasswordHash: hash,
				FirstName:    first,
				LastName:     last,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created user %s (#%d)\n", user.Username, user.ID)
			if a.cfg.CLI.User == "" {
				fmt.Fprintf(out, "Set cli.user: %s in your config or pass --user %s to act as this user.\n", user.Username, user.Username)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&first, "first-name", "", "first name")
	cmd.Flags().StringVar(&last, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
