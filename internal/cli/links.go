package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/links"
	"github.com/spf13/cobra"
)

func newLinksCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "links",
		Aliases: []string{"link"},
		Short:   "List and edit your links",
	}
	cmd.AddCommand(
		newLinksListCommand(e),
		newLinksAddCommand(e),
		newLinksEditCommand(e),
		newLinksToggleCommand(e),
		newLinksDeleteCommand(e),
		newLinksMoveCommand(e),
	)
	return cmd
}

func newLinksListCommand(e *env) *cobra.Command {
	var (
		sortKey    string
		activeOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.linkState(cmd.Context())
			if err != nil {
				return err
			}
			list := links.SortLinks(st.Links(), links.SortKey(sortKey))
			if activeOnly {
				list = links.ActiveOnly(list)
			}
			if e.asJSON {
				return writeJSON(out(cmd), list)
			}
			printLinks(out(cmd), list)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", string(links.SortDefault), "default, newest, oldest, title or clicks")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only links shown on the public page")
	return cmd
}

func newLinksAddCommand(e *env) *cobra.Command {
	var (
		in     links.SaveLinkInput
		style  string
		hidden bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a link at the end of your page",
		Long: `Add a link at the end of your page. A URL without a scheme gets https://.

Example:
  linkhub links add --title "Portfolio" --url example.com/work --style card`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.linkState(cmd.Context())
			if err != nil {
				return err
			}
			in.Style = links.ParseStyle(style)
			active := !hidden
			in.IsActive = &active

			id, err := st.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			if e.asJSON {
				return writeJSON(out(cmd), map[string]string{"linkId": id})
			}
			fmt.Fprintf(out(cmd), "Added link %s.\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "link title (max 100)")
	cmd.Flags().StringVar(&in.URL, "url", "", "link target")
	cmd.Flags().StringVar(&in.Category, "category", "", "category (max 20)")
	cmd.Flags().StringVar(&in.Description, "description", "", "description (max 500)")
	cmd.Flags().StringVar(&in.Image, "image", "", "thumbnail image URL")
	cmd.Flags().StringVar(&style, "style", string(links.StyleSimple), "simple, thumbnail, card or background")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "add the link without showing it")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newLinksEditCommand(e *env) *cobra.Command {
	var title, url, category, description, image, style string

	cmd := &cobra.Command{
		Use:   "edit <link-id>",
		Short: "Change fields of a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.linkState(cmd.Context())
			if err != nil {
				return err
			}

			var upd links.Update
			flags := cmd.Flags()
			if flags.Changed("title") {
				upd.Title = &title
			}
			if flags.Changed("url") {
				upd.URL = &url
			}
			if flags.Changed("category") {
				upd.Category = &category
			}
			if flags.Changed("description") {
				upd.Description = &description
			}
			if flags.Changed("image") {
				upd.Image = &image
			}
			if flags.Changed("style") {
				s := links.ParseStyle(style)
				upd.Style = &s
			}
			if upd.IsEmpty() {
				return errors.New("nothing to change, pass at least one flag")
			}

			if err := st.Update(cmd.Context(), args[0], upd); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Updated link %s.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "link title")
	cmd.Flags().StringVar(&url, "url", "", "link target")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&image, "image", "", "thumbnail image URL")
	cmd.Flags().StringVar(&style, "style", "", "simple, thumbnail, card or background")
	return cmd
}

func newLinksToggleCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <link-id>",
		Short: "Show or hide a link on the public page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.linkState(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.ToggleActive(cmd.Context(), args[0]); err != nil {
				return err
			}
			l, _ := st.Find(args[0])
			state := "hidden"
			if l.IsActive {
				state = "visible"
			}
			fmt.Fprintf(out(cmd), "Link %s is now %s.\n", args[0], state)
			return nil
		},
	}
}

func newLinksDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <link-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a link",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.linkState(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Deleted link %s.\n", args[0])
			return nil
		},
	}
}

func newLinksMoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a link to another position",
		Long: `Move the link at position <from> to position <to>. Positions are the
numbers printed by "linkhub links list", starting at 1.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := position(args[0])
			if err != nil {
				return err
			}
			to, err := position(args[1])
			if err != nil {
				return err
			}

			st, err := e.linkState(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.Move(cmd.Context(), from, to); err != nil {
				return err
			}
			if e.asJSON {
				return writeJSON(out(cmd), st.Links())
			}
			printLinks(out(cmd), st.Links())
			return nil
		},
	}
}

// position converts a one based position to an index.
func position(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, apperr.Validation("order", fmt.Sprintf("invalid position %q", arg))
	}
	return n - 1, nil
}
