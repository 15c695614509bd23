package cli

import (
	"errors"
	"fmt"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/profile"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/internal/session"
	"github.com/IgorGrieder/linkhub/internal/subject"
	"github.com/spf13/cobra"
)

func newProfileCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit a profile",
	}
	cmd.AddCommand(newProfileShowCommand(e), newProfileUpdateCommand(e))
	return cmd
}

func newProfileShowCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show [username]",
		Short: "Show your profile, or someone else's by username",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var l profile.Lookup
			if len(args) == 1 {
				l.Username = args[0]
			} else {
				u, err := e.user()
				if err != nil {
					return err
				}
				l.UserID, l.UserEmail = u.ID, u.Email
			}

			res, err := e.app.Profiles.GetProfile(cmd.Context(), l)
			if err != nil {
				return err
			}
			if !res.Success {
				return &apperr.RemoteError{Action: remote.ActionGetProfile, Message: res.Message}
			}
			if e.asJSON {
				return writeJSON(out(cmd), res.Profile)
			}
			printProfile(out(cmd), *res.Profile)
			return nil
		},
	}
}

func newProfileUpdateCommand(e *env) *cobra.Command {
	var name, username, bio, avatar, template string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change fields of your profile",
		Long: `Change fields of your profile. Only the flags given are sent.

Example:
  linkhub profile update --bio "Designer in Seoul" --template sunset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.user()
			if err != nil {
				return err
			}

			var upd profile.Update
			flags := cmd.Flags()
			if flags.Changed("name") {
				upd.Name = &name
			}
			if flags.Changed("username") {
				upd.Username = &username
			}
			if flags.Changed("bio") {
				upd.Bio = &bio
			}
			if flags.Changed("avatar") {
				upd.Avatar = &avatar
			}
			if flags.Changed("template") {
				upd.Template = &template
			}
			if upd == (profile.Update{}) {
				return errors.New("nothing to update, pass at least one flag")
			}

			if err := e.app.Profiles.UpdateProfile(cmd.Context(), subject.ByID(u.ID), upd); err != nil {
				return err
			}

			// Keep the session snapshot in step with what the page shows.
			err = e.app.Session.UpdateUser(cmd.Context(), func(s *session.User) {
				p := upd.Apply(profile.Profile{Name: s.Name, Username: s.Username, Avatar: s.Avatar, Template: s.Template})
				s.Name, s.Username, s.Avatar, s.Template = p.Name, p.Username, p.Avatar, p.Template
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Profile updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (max 50)")
	cmd.Flags().StringVar(&username, "username", "", "public username (max 30)")
	cmd.Flags().StringVar(&bio, "bio", "", "short bio (max 500)")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar image URL")
	cmd.Flags().StringVar(&template, "template", "", "page template")
	return cmd
}
