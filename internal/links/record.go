package links

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// FromRecord converts a raw store row into a Link. Spreadsheet-backed rows
// carry numbers where strings are expected and "TRUE"/"FALSE" for booleans.
func FromRecord(rec map[string]any) Link {
	return Link{
		ID:          text(rec["id"]),
		UserID:      text(rec["userId"]),
		UserEmail:   text(rec["userEmail"]),
		Title:       text(rec["title"]),
		URL:         text(rec["url"]),
		Category:    text(rec["category"]),
		Description: text(rec["description"]),
		Image:       text(rec["image"]),
		Style:       ParseStyle(text(rec["style"])),
		Order:       number(rec["order"], 1),
		IsActive:    flag(rec["isActive"], true),
		ClickCount:  number(rec["clickCount"], 0),
		CreatedAt:   text(rec["createdAt"]),
		UpdatedAt:   text(rec["updatedAt"]),
	}
}

func FromRecords(recs []map[string]any) []Link {
	out := make([]Link, 0, len(recs))
	for _, r := range recs {
		if r == nil {
			continue
		}
		out = append(out, FromRecord(r))
	}
	return out
}

func text(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// number reads spreadsheet cells, where "08" means eight: strings are
// always decimal.
func number(v any, def int) int {
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return def
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return def
		}
		return int(f)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

func flag(v any, def bool) bool {
	switch b := v.(type) {
	case nil:
		return def
	case float64:
		return b != 0
	case string:
		if strings.TrimSpace(b) == "" {
			return def
		}
		parsed, err := cast.ToBoolE(strings.TrimSpace(b))
		if err != nil {
			return def
		}
		return parsed
	}
	parsed, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return parsed
}
