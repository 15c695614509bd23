// Package page composes the data-access services into what a page needs in
// one call: the public link-in-bio page and the owner's dashboard.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const (
	DefaultSoftTimeout = 10 * time.Second
	DefaultHardTimeout = 15 * time.Second
)

// ErrNotFound means the store has no profile for the requested subject.
var ErrNotFound = errors.New("page not found")

// Batcher sends several actions in one batch_request. *remote.Client
// implements it.
type Batcher interface {
	Batch(ctx context.Context, reqs []remote.Request) ([]*remote.Envelope, error)
}

type Deps struct {
	Store    remote.Caller
	Batcher  Batcher
	Profiles *profile.Service
	Links    *links.Service
	Tracker  *analytics.Tracker
	// SoftTimeout and HardTimeout guard the profile fetch. Default 10s and 15s.
	SoftTimeout time.Duration
	HardTimeout time.Duration
}

type Composer struct {
	store    remote.Caller
	batcher  Batcher
	profiles *profile.Service
	links    *links.Service
	tracker  *analytics.Tracker
	soft     time.Duration
	hard     time.Duration
}

func NewComposer(d Deps) *Composer {
	if d.SoftTimeout <= 0 {
		d.SoftTimeout = DefaultSoftTimeout
	}
	if d.HardTimeout < d.SoftTimeout {
		d.HardTimeout = max(DefaultHardTimeout, d.SoftTimeout)
	}
	return &Composer{
		store:    d.Store,
		batcher:  d.Batcher,
		profiles: d.Profiles,
		links:    d.Links,
		tracker:  d.Tracker,
		soft:     d.SoftTimeout,
		hard:     d.HardTimeout,
	}
}

// Public is a rendered link-in-bio page: the profile and its visible links in
// display order.
type Public struct {
	Profile profile.Profile `json:"profile"`
	Links   []links.Link    `json:"links"`
}

// PublicPage loads the page for subj. It tries the combined
// get_profile_and_links action first and falls back to separate profile and
// link lookups.
func (c *Composer) PublicPage(ctx context.Context, subj subject.Subject) (*Public, error) {
	if subj.IsZero() {
		return nil, apperr.Validation("username", constants.MsgProfileIDRequired)
	}

	page, err := c.combined(ctx, subj)
	if err == nil {
		return page, nil
	}
	if errors.Is(err, apperr.ErrValidation) {
		return nil, err
	}
	logger.Debug("combined page load failed, falling back", zap.Error(err), zap.String("subject", subj.String()))

	return c.fanOut(ctx, subj)
}

func lookupFor(subj subject.Subject) profile.Lookup {
	switch subj.Kind() {
	case subject.KindID:
		return profile.Lookup{UserID: subj.Value()}
	case subject.KindEmail:
		return profile.Lookup{UserEmail: subj.Value()}
	default:
		return profile.Lookup{Username: subj.Value()}
	}
}

func (c *Composer) combined(ctx context.Context, subj subject.Subject) (*Public, error) {
	if c.store == nil {
		return nil, errors.New("no store for combined lookup")
	}

	env, err := race(ctx, remote.ActionGetProfileAndLinks, c.soft, c.hard, func(ctx context.Context) (*remote.Envelope, error) {
		return remote.Do(ctx, c.store, remote.ActionGetProfileAndLinks, lookupFor(subj))
	})
	if err != nil {
		return nil, err
	}

	var rawProfile map[string]any
	var rawLinks []map[string]any
	if err := env.Decode("profile", &rawProfile); err != nil || rawProfile == nil {
		return nil, fmt.Errorf("%s: missing profile", remote.ActionGetProfileAndLinks)
	}
	if err := env.Decode("links", &rawLinks); err != nil {
		return nil, fmt.Errorf("%s: %w", remote.ActionGetProfileAndLinks, err)
	}

	p := profile.FromRecord(rawProfile)
	list := links.FromRecords(rawLinks)
	if c.profiles != nil {
		c.profiles.Prime(p)
	}
	if c.links != nil && (p.UserID != "" || p.UserEmail != "") {
		c.links.Prime(p.UserID, p.UserEmail, list)
	}
	return publicPage(p, list), nil
}

// fanOut loads the profile and the links concurrently when the subject is
// enough to ask for both, otherwise profile first.
func (c *Composer) fanOut(ctx context.Context, subj subject.Subject) (*Public, error) {
	if c.profiles == nil || c.links == nil {
		return nil, errors.New("page services not configured")
	}

	var (
		p    *profile.Profile
		list []links.Link
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		got, err := c.fetchProfile(gctx, subj)
		p = got
		return err
	})

	if subj.Kind() != subject.KindUsername {
		g.Go(func() error {
			list = c.fetchLinks(ctx, subj)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if list == nil {
		list = c.fetchLinks(ctx, subject.First(p.UserID, p.UserEmail, ""))
	}
	return publicPage(*p, list), nil
}

func (c *Composer) fetchProfile(ctx context.Context, subj subject.Subject) (*profile.Profile, error) {
	res, err := race(ctx, remote.ActionGetProfile, c.soft, c.hard, func(ctx context.Context) (*profile.Result, error) {
		return c.profiles.GetProfile(ctx, lookupFor(subj))
	})
	if err != nil {
		return nil, err
	}
	if !res.Success || res.Profile == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, res.Message)
	}
	return res.Profile, nil
}

// fetchLinks never fails: GetLinks already degrades to an empty list.
func (c *Composer) fetchLinks(ctx context.Context, subj subject.Subject) []links.Link {
	var userID, email string
	switch subj.Kind() {
	case subject.KindID:
		userID = subj.Value()
	case subject.KindEmail:
		email = subj.Value()
	default:
		return []links.Link{}
	}
	list, err := c.links.GetLinks(ctx, userID, email)
	if err != nil {
		logger.Warn("links unavailable for page", zap.Error(err))
		return []links.Link{}
	}
	return list
}

func publicPage(p profile.Profile, list []links.Link) *Public {
	return &Public{
		Profile: p,
		Links:   links.SortLinks(links.ActiveOnly(list), links.SortDefault),
	}
}
