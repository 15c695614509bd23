package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/IgorGrieder/linkhub/internal/analytics"
	"github.com/IgorGrieder/linkhub/internal/links"
	"github.com/IgorGrieder/linkhub/internal/profile"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProfile(w io.Writer, p profile.Profile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	rows := [][2]string{
		{"ID", p.UserID},
		{"Email", p.UserEmail},
		{"Name", p.Name},
		{"Username", p.Username},
		{"Bio", p.Bio},
		{"Avatar", p.Avatar},
		{"Template", p.Template},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
}

// printLinks lists links with a one based position, which is what
// `links move` takes.
func printLinks(w io.Writer, list []links.Link) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No links yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "#\tID\tTITLE\tURL\tACTIVE\tCLICKS")
	for i, l := range list {
		active := "yes"
		if !l.IsActive {
			active = "no"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", i+1, l.ID, l.Title, l.URL, active, l.ClickCount)
	}
}

func printStats(w io.Writer, s *analytics.Stats) {
	fmt.Fprintf(w, "Visits: %d  Unique visitors: %d", s.TotalVisits, s.UniqueVisitors)
	if s.TotalClicks > 0 {
		fmt.Fprintf(w, "  Clicks: %d", s.TotalClicks)
	}
	fmt.Fprintln(w)

	if len(s.Daily) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tVISITS\tUNIQUE")
		for _, d := range s.Daily {
			fmt.Fprintf(tw, "%s\t%d\t%d\n", d.Date, d.Visits, d.UniqueVisitors)
		}
		tw.Flush()
	}

	if len(s.Links) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "LINK\tTITLE\tCLICKS")
		for _, l := range s.Links {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", l.LinkID, l.Title, strconv.Itoa(l.Clicks))
		}
		tw.Flush()
	}
}
