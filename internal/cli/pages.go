package cli

import (
	"errors"
	"fmt"

	"github.com/IgorGrieder/linkhub/internal/analytics"
	"github.com/IgorGrieder/linkhub/internal/subject"
	"github.com/spf13/cobra"
)

func newStatsCommand(e *env) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show visit statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.user(); err != nil {
				return err
			}
			stats := e.app.Tracker.GetStats(cmd.Context(), days)
			if stats == nil {
				fmt.Fprintln(out(cmd), "Statistics are unavailable right now.")
				return nil
			}
			if e.asJSON {
				return writeJSON(out(cmd), stats)
			}
			printStats(out(cmd), stats)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", analytics.DefaultStatsDays, "trailing window in days")
	return cmd
}

func newDashboardCommand(e *env) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your profile, links and statistics together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.user()
			if err != nil {
				return err
			}

			d, err := e.app.Composer.Dashboard(cmd.Context(), subject.ByID(u.ID), days)
			if err != nil {
				return err
			}
			e.app.Tracker.GoLogVisit(cmd.Context(), "/dashboard", nil, true)

			if e.asJSON {
				return writeJSON(out(cmd), d)
			}
			w := out(cmd)
			if d.Profile != nil {
				printProfile(w, *d.Profile)
				fmt.Fprintln(w)
			}
			printLinks(w, d.Links)
			if d.Stats != nil {
				fmt.Fprintln(w)
				printStats(w, d.Stats)
			}
			if d.Partial {
				fmt.Fprintln(w, "\nSome parts could not be loaded.")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", analytics.DefaultStatsDays, "trailing window in days for statistics")
	return cmd
}

func newPageCommand(e *env) *cobra.Command {
	var open int

	cmd := &cobra.Command{
		Use:   "page <username>",
		Short: "Show someone's public page",
		Long: `Show someone's public page as visitors see it. The view is recorded as a
visit. With --open N the click on the N-th link is recorded and its URL printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			username := args[0]

			pg, err := e.app.Composer.PublicPage(ctx, subject.ByUsername(username))
			if err != nil {
				return err
			}

			var visitor *analytics.UserInfo
			if u := e.app.Session.CurrentUser(); u != nil {
				visitor = &analytics.UserInfo{UserID: u.ID, UserEmail: u.Email}
			}
			e.app.Tracker.GoLogVisit(ctx, "/"+username, visitor, visitor != nil)

			if open > 0 {
				if open > len(pg.Links) {
					return errors.New("no link at that position")
				}
				l := pg.Links[open-1]
				e.app.Tracker.GoLogLinkClick(ctx, l.ID, l.Title, l.URL, visitor)
				fmt.Fprintln(out(cmd), l.URL)
				return nil
			}

			if e.asJSON {
				return writeJSON(out(cmd), pg)
			}
			printProfile(out(cmd), pg.Profile)
			fmt.Fprintln(out(cmd))
			printLinks(out(cmd), pg.Links)
			return nil
		},
	}
	cmd.Flags().IntVar(&open, "open", 0, "record a click on the link at this position and print its URL")
	return cmd
}
