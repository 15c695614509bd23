// Package cli is the terminal client: a single logged-in user managing their
// profile and links against the remote store.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/app"
	"github.com/IgorGrieder/linkhub/internal/config"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/linkstate"
	"github.com/IgorGrieder/linkhub/internal/session"
	"github.com/spf13/cobra"
)

// ErrNotLoggedIn is returned by commands that act on the caller's own data.
var ErrNotLoggedIn = errors.New("not logged in, run `linkhub login` first")

// Opener builds the services a command runs against.
type Opener func(ctx context.Context) (*app.App, error)

// env is shared by every subcommand of one root.
type env struct {
	open   Opener
	app    *app.App
	asJSON bool
}

// NewRootCommand returns the linkhub command tree. Services are opened once
// before any subcommand runs and closed after it returns.
func NewRootCommand(open Opener) *cobra.Command {
	e := &env{open: open}

	root := &cobra.Command{
		Use:   "linkhub",
		Short: "Manage a link-in-bio page",
		Long: `linkhub manages a link-in-bio page stored in a remote spreadsheet backend.

Log in once with "linkhub login"; the session is kept between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			e.app = a
			if _, err := a.Session.Restore(cmd.Context()); err != nil {
				return fmt.Errorf("restore session: %w", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.app == nil {
				return nil
			}
			return e.app.Close()
		},
	}
	root.PersistentFlags().BoolVar(&e.asJSON, "json", false, "print machine readable JSON")

	root.AddCommand(
		newLoginCommand(e),
		newLogoutCommand(e),
		newWhoamiCommand(e),
		newProfileCommand(e),
		newLinksCommand(e),
		newStatsCommand(e),
		newDashboardCommand(e),
		newPageCommand(e),
	)
	return root
}

// DefaultOpener loads configuration from the environment and builds the
// services in interactive mode.
func DefaultOpener(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := logger.Init(cfg.App.Env, config.GetEnv("LINKHUB_LOG_LEVEL", "warn")); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.New(cfg, app.ModeInteractive)
}

// Execute runs the command tree with os.Args and exits non-zero on failure.
func Execute(ctx context.Context) {
	root := NewRootCommand(DefaultOpener)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// describe prefers the user-facing message of errors raised by the services.
func describe(err error) string {
	if errors.Is(err, ErrNotLoggedIn) {
		return err.Error()
	}
	var v *apperr.ValidationError
	var t *apperr.TransportError
	var r *apperr.RemoteError
	if errors.As(err, &v) || errors.As(err, &t) || errors.As(err, &r) {
		return apperr.UserMessage(err)
	}
	return err.Error()
}

func (e *env) user() (*session.User, error) {
	u := e.app.Session.CurrentUser()
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	return u, nil
}

// linkState loads the caller's links into an optimistic editor.
func (e *env) linkState(ctx context.Context) (*linkstate.State, error) {
	u, err := e.user()
	if err != nil {
		return nil, err
	}
	st := linkstate.New(e.app.Links, linkstate.Owner{UserID: u.ID, UserEmail: u.Email})
	if err := st.Load(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
