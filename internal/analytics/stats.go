package analytics

import (
	"context"
	"strconv"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const DefaultStatsDays = 7

type DailyStat struct {
	Date           string `json:"date"`
	Visits         int    `json:"visits"`
	UniqueVisitors int    `json:"uniqueVisitors"`
}

type LinkClicks struct {
	LinkID string `json:"linkId"`
	Title  string `json:"title,omitempty"`
	Clicks int    `json:"clicks"`
}

// Stats is the server-side aggregate for the trailing window.
type Stats struct {
	TotalVisits    int          `json:"totalVisits"`
	UniqueVisitors int          `json:"uniqueVisitors"`
	TotalClicks    int          `json:"totalClicks,omitempty"`
	Daily          []DailyStat  `json:"daily"`
	Links          []LinkClicks `json:"links,omitempty"`
}

type statsRequest struct {
	Days int `json:"days"`
}

// GetStats returns the aggregate for the last days days, or nil on any
// failure.
func (t *Tracker) GetStats(ctx context.Context, days int) *Stats {
	if t.store == nil {
		return nil
	}
	if days <= 0 {
		days = DefaultStatsDays
	}

	env, err := remote.Do(ctx, t.store, remote.ActionGetStats, statsRequest{Days: days})
	if err != nil {
		logger.Warn("failed to load stats", zap.Error(err), zap.Int("days", days))
		return nil
	}

	field := "stats"
	if !env.Has(field) {
		field = "data"
	}
	var raw map[string]any
	if err := env.Decode(field, &raw); err != nil || raw == nil {
		logger.Warn("malformed stats payload", zap.Error(err))
		return nil
	}
	return StatsFromRecord(raw)
}

// StatsFromRecord coerces a raw stats object. Spreadsheet aggregates often
// carry counts as strings.
func StatsFromRecord(rec map[string]any) *Stats {
	s := &Stats{
		TotalVisits:    count(rec["totalVisits"]),
		UniqueVisitors: count(rec["uniqueVisitors"]),
		TotalClicks:    count(rec["totalClicks"]),
		Daily:          []DailyStat{},
	}

	for _, item := range cast.ToSlice(rec["daily"]) {
		day := cast.ToStringMap(item)
		if len(day) == 0 {
			continue
		}
		s.Daily = append(s.Daily, DailyStat{
			Date:           strings.TrimSpace(cast.ToString(day["date"])),
			Visits:         count(day["visits"]),
			UniqueVisitors: count(day["uniqueVisitors"]),
		})
	}

	for _, item := range cast.ToSlice(rec["links"]) {
		l := cast.ToStringMap(item)
		id := strings.TrimSpace(cast.ToString(l["linkId"]))
		if id == "" {
			id = strings.TrimSpace(cast.ToString(l["id"]))
		}
		if id == "" {
			continue
		}
		clicks := l["clicks"]
		if clicks == nil {
			clicks = l["clickCount"]
		}
		s.Links = append(s.Links, LinkClicks{
			LinkID: id,
			Title:  cast.ToString(l["title"]),
			Clicks: count(clicks),
		})
	}
	return s
}

// count reads a counter cell. Strings are decimal even with leading zeros.
func count(v any) int {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		return int(f)
	}
	return cast.ToInt(v)
}
