package links

import (
	"slices"
	"strings"
	"testing"

	"github.com/IgorGrieder/linkhub/internal/constants"
)

func TestValidateLinkData(t *testing.T) {
	tests := []struct {
		name string
		in   LinkData
		want []string
	}{
		{
			name: "valid",
			in:   LinkData{Title: "Blog", URL: "https://blog.example"},
			want: []string{},
		},
		{
			name: "empty title",
			in:   LinkData{Title: "", URL: "https://blog.example"},
			want: []string{constants.MsgTitleRequired},
		},
		{
			name: "blank title",
			in:   LinkData{Title: "   ", URL: "https://blog.example"},
			want: []string{constants.MsgTitleRequired},
		},
		{
			name: "title too long",
			in:   LinkData{Title: strings.Repeat("a", 101), URL: "https://blog.example"},
			want: []string{constants.MsgTitleTooLong},
		},
		{
			name: "relative url",
			in:   LinkData{Title: "Blog", URL: "blog.example"},
			want: []string{constants.MsgURLInvalid},
		},
		{
			name: "mailto is a url",
			in:   LinkData{Title: "Mail", URL: "mailto:me@example.com"},
			want: []string{},
		},
		{
			name: "everything wrong",
			in: LinkData{
				URL:         "",
				Category:    strings.Repeat("c", 21),
				Description: strings.Repeat("d", 501),
			},
			want: []string{
				constants.MsgTitleRequired,
				constants.MsgURLRequired,
				constants.MsgCategoryTooLong,
				constants.MsgDescriptionTooLong,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateLinkData(tt.in)
			if got.IsValid != (len(tt.want) == 0) {
				t.Errorf("IsValid = %v", got.IsValid)
			}
			if !slices.Equal(got.Errors, tt.want) {
				t.Errorf("Errors = %v, want %v", got.Errors, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"example.com":          "https://example.com",
		"  example.com/path  ": "https://example.com/path",
		"http://x.com":         "http://x.com",
		"https://x.com":        "https://x.com",
		"ftp://files.x.com":    "ftp://files.x.com",
		"":                     "",
	}
	for in, want := range tests {
		if got := NormalizeURL(in); got != want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSortLinks(t *testing.T) {
	in := []Link{
		{ID: "a", Title: "beta", Order: 2, ClickCount: 1, CreatedAt: "2025-01-02T00:00:00Z"},
		{ID: "b", Title: "Alpha", Order: 1, ClickCount: 9, CreatedAt: "2025-01-03T00:00:00Z"},
		{ID: "c", Title: "gamma", Order: 2, ClickCount: 1, CreatedAt: "2025-01-01T00:00:00Z"},
		{ID: "d", Title: "delta", Order: 1, ClickCount: 4, CreatedAt: "2025-01-04T00:00:00Z"},
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortDefault, []string{"b", "d", "a", "c"}},
		{SortNewest, []string{"d", "b", "a", "c"}},
		{SortOldest, []string{"c", "a", "b", "d"}},
		{SortTitle, []string{"b", "a", "d", "c"}},
		{SortClicks, []string{"b", "d", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := SortLinks(in, tt.key)
			ids := make([]string, len(got))
			for i, l := range got {
				ids[i] = l.ID
			}
			if !slices.Equal(ids, tt.want) {
				t.Errorf("order = %v, want %v", ids, tt.want)
			}
		})
	}

	if in[0].ID != "a" {
		t.Error("SortLinks must not reorder its input")
	}
}

func TestActiveOnly(t *testing.T) {
	got := ActiveOnly([]Link{{ID: "a", IsActive: true}, {ID: "b"}, {ID: "c", IsActive: true}})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("ActiveOnly = %+v", got)
	}
}

func TestFromRecord_Flags(t *testing.T) {
	tests := []struct {
		raw  any
		want bool
	}{
		{nil, true},
		{"", true},
		{"TRUE", true},
		{"FALSE", false},
		{"false", false},
		{float64(0), false},
		{float64(1), true},
		{true, true},
		{false, false},
		{"maybe", true},
	}
	for _, tt := range tests {
		got := FromRecord(map[string]any{"isActive": tt.raw}).IsActive
		if got != tt.want {
			t.Errorf("isActive %#v -> %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFromRecord_Numbers(t *testing.T) {
	tests := []struct {
		raw  any
		want int
	}{
		{nil, 1},
		{"", 1},
		{"3", 3},
		{" 4 ", 4},
		{"08", 8},
		{"010", 10},
		{"2.0", 2},
		{"abc", 1},
		{float64(5), 5},
	}
	for _, tt := range tests {
		if got := FromRecord(map[string]any{"order": tt.raw}).Order; got != tt.want {
			t.Errorf("order %#v -> %d, want %d", tt.raw, got, tt.want)
		}
	}

	if got := FromRecord(map[string]any{"clickCount": "010"}).ClickCount; got != 10 {
		t.Errorf("clickCount \"010\" -> %d, want 10", got)
	}
}

func TestUpdateApply(t *testing.T) {
	title := "New"
	active := false
	u := Update{Title: &title, IsActive: &active}
	if u.IsEmpty() {
		t.Fatal("update with fields reported empty")
	}

	got := u.Apply(Link{ID: "x", Title: "Old", URL: "https://x", IsActive: true})
	if got.Title != "New" || got.IsActive || got.URL != "https://x" {
		t.Errorf("Apply = %+v", got)
	}
	if !(Update{}).IsEmpty() {
		t.Error("zero update should be empty")
	}
}
