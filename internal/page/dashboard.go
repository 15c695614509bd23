package page

import (
	"context"

	"github.com/IgorGrieder/linkhub/internal/analytics"
	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/links"
	"github.com/IgorGrieder/linkhub/internal/profile"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/internal/subject"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dashboard is the owner's view. Any part may be missing; Partial reports
// whether one was.
type Dashboard struct {
	Profile *profile.Profile `json:"profile,omitempty"`
	Links   []links.Link     `json:"links"`
	Stats   *analytics.Stats `json:"stats,omitempty"`
	Partial bool             `json:"partial"`
}

type ownerRequest struct {
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

type statsRequest struct {
	Days int `json:"days"`
}

// Dashboard loads profile, links and stats for the owner named by subj in a
// single batch_request, falling back to separate calls when the batch itself
// fails.
func (c *Composer) Dashboard(ctx context.Context, subj subject.Subject, days int) (*Dashboard, error) {
	if subj.IsZero() || subj.Kind() == subject.KindUsername {
		return nil, apperr.Validation("userId", constants.MsgLinkOwnerRequired)
	}
	if days <= 0 {
		days = analytics.DefaultStatsDays
	}

	if c.batcher != nil {
		d, err := c.batched(ctx, subj, days)
		if err == nil {
			return d, nil
		}
		logger.Warn("dashboard batch failed, falling back", zap.Error(err))
	}
	return c.separate(ctx, subj, days), nil
}

func (c *Composer) batched(ctx context.Context, subj subject.Subject, days int) (*Dashboard, error) {
	owner := ownerRequest{}
	if subj.Kind() == subject.KindID {
		owner.UserID = subj.Value()
	} else {
		owner.UserEmail = subj.Value()
	}

	results, err := c.batcher.Batch(ctx, []remote.Request{
		{Action: remote.ActionGetProfile, Payload: owner},
		{Action: remote.ActionGetLinks, Payload: owner},
		{Action: remote.ActionGetStats, Payload: statsRequest{Days: days}},
	})
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Links: []links.Link{}}

	if env := results[0]; env != nil && env.Success {
		var raw map[string]any
		if err := env.Decode("profile", &raw); err == nil && raw != nil {
			p := profile.FromRecord(raw)
			d.Profile = &p
			if c.profiles != nil {
				c.profiles.Prime(p)
			}
		}
	}

	if env := results[1]; env != nil && env.Success {
		var raw []map[string]any
		if err := env.Decode("links", &raw); err == nil {
			d.Links = links.SortLinks(links.FromRecords(raw), links.SortDefault)
			if c.links != nil {
				c.links.Prime(owner.UserID, owner.UserEmail, d.Links)
			}
		} else {
			d.Partial = true
		}
	} else {
		d.Partial = true
	}

	if env := results[2]; env != nil && env.Success {
		var raw map[string]any
		if err := env.Decode("stats", &raw); err == nil && raw != nil {
			d.Stats = analytics.StatsFromRecord(raw)
		}
	}

	d.Partial = d.Partial || d.Profile == nil || d.Stats == nil
	return d, nil
}

func (c *Composer) separate(ctx context.Context, subj subject.Subject, days int) *Dashboard {
	d := &Dashboard{Links: []links.Link{}}

	var g errgroup.Group
	if c.profiles != nil {
		g.Go(func() error {
			res, err := c.profiles.GetProfile(ctx, lookupFor(subj))
			if err == nil && res.Success {
				d.Profile = res.Profile
			}
			return nil
		})
	}
	if c.links != nil {
		g.Go(func() error {
			d.Links = links.SortLinks(c.fetchLinks(ctx, subj), links.SortDefault)
			return nil
		})
	}
	if c.tracker != nil {
		g.Go(func() error {
			d.Stats = c.tracker.GetStats(ctx, days)
			return nil
		})
	}
	_ = g.Wait()

	d.Partial = d.Profile == nil || d.Stats == nil
	return d
}
