package links

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

type SortKey string

const (
	SortDefault SortKey = "default"
	SortNewest  SortKey = "newest"
	SortOldest  SortKey = "oldest"
	SortTitle   SortKey = "title"
	SortClicks  SortKey = "clicks"
)

// SortLinks returns a sorted copy. Every key sorts stably, so links that
// compare equal keep their input order.
func SortLinks(in []Link, key SortKey) []Link {
	out := slices.Clone(in)

	var compare func(a, b Link) int
	switch key {
	case SortNewest:
		compare = func(a, b Link) int { return compareCreated(b, a) }
	case SortOldest:
		compare = compareCreated
	case SortTitle:
		compare = func(a, b Link) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortClicks:
		compare = func(a, b Link) int { return cmp.Compare(b.ClickCount, a.ClickCount) }
	default:
		compare = func(a, b Link) int { return cmp.Compare(a.Order, b.Order) }
	}

	slices.SortStableFunc(out, compare)
	return out
}

// ActiveOnly drops links hidden from the public page.
func ActiveOnly(in []Link) []Link {
	out := make([]Link, 0, len(in))
	for _, l := range in {
		if l.IsActive {
			out = append(out, l)
		}
	}
	return out
}

func compareCreated(a, b Link) int {
	ta, errA := time.Parse(time.RFC3339, a.CreatedAt)
	tb, errB := time.Parse(time.RFC3339, b.CreatedAt)
	if errA == nil && errB == nil {
		return ta.Compare(tb)
	}
	return strings.Compare(a.CreatedAt, b.CreatedAt)
}
