package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCommand(e *env) *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session between runs",
		Long: `Log in with the email and password registered in the store.

The password may also be given through LINKHUB_PASSWORD. With --remember the
email is kept and offered as the default on the next login.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = e.app.Session.RememberedEmail(cmd.Context())
			}
			if password == "" {
				password = os.Getenv("LINKHUB_PASSWORD")
			}

			u, err := e.app.Session.Login(cmd.Context(), email, password, remember)
			if err != nil {
				return err
			}
			if e.asJSON {
				return writeJSON(out(cmd), u)
			}
			fmt.Fprintf(out(cmd), "Logged in as %s <%s>\n", displayName(u.Name, u.Username), u.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (defaults to the remembered one)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&remember, "remember", false, "remember the email for the next login")
	return cmd
}

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.user()
			if err != nil {
				return err
			}
			if e.asJSON {
				return writeJSON(out(cmd), u)
			}
			fmt.Fprintf(out(cmd), "%s <%s> (id %s)\n", displayName(u.Name, u.Username), u.Email, u.ID)
			return nil
		},
	}
}

func displayName(name, username string) string {
	switch {
	case name != "":
		return name
	case username != "":
		return "@" + username
	default:
		return "(no name)"
	}
}
