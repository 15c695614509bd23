// Package linkstate keeps the current user's links in memory and applies
// edits optimistically: the local list changes first, the store is told
// second, and a rejected change puts the previous list back.
package linkstate

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/links"
	"go.uber.org/zap"
)

// LinkService is the part of *links.Service the state drives.
type LinkService interface {
	GetLinks(ctx context.Context, userID, userEmail string) ([]links.Link, error)
	SaveLink(ctx context.Context, in links.SaveLinkInput) (string, error)
	UpdateLink(ctx context.Context, linkID string, fields links.Update) error
	DeleteLink(ctx context.Context, linkID string) error
	UpdateLinkOrders(ctx context.Context, userID string, orders map[string]int, userEmail string) error
}

type Owner struct {
	UserID    string
	UserEmail string
}

// MutationError is returned when the store rejected an optimistic change and
// the list was rolled back.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *MutationError) Unwrap() error { return e.Err }

// UserMessage is the text to show next to the control that failed.
func (e *MutationError) UserMessage() string { return apperr.UserMessage(e.Err) }

// State is safe for concurrent use. Two overlapping mutations that both fail
// roll back in completion order, so the last rollback wins.
type State struct {
	svc   LinkService
	owner Owner

	mu    sync.RWMutex
	links []links.Link
}

func New(svc LinkService, owner Owner) *State {
	return &State{svc: svc, owner: owner, links: []links.Link{}}
}

// Load replaces the list with what the store has. A store failure leaves an
// empty list, like GetLinks itself.
func (s *State) Load(ctx context.Context) error {
	list, err := s.svc.GetLinks(ctx, s.owner.UserID, s.owner.UserEmail)
	if err != nil {
		return err
	}
	s.Replace(list)
	return nil
}

// Links returns a copy sorted by order.
func (s *State) Links() []links.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return links.SortLinks(s.links, links.SortDefault)
}

func (s *State) Replace(list []links.Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = links.SortLinks(list, links.SortDefault)
}

func (s *State) Find(linkID string) (links.Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(linkID)
	if i < 0 {
		return links.Link{}, false
	}
	return s.links[i], true
}

// ToggleActive flips the visibility of one link.
func (s *State) ToggleActive(ctx context.Context, linkID string) error {
	var active bool
	return s.mutate(ctx, "toggle", func(list []links.Link) ([]links.Link, error) {
		i := indexOf(list, linkID)
		if i < 0 {
			return nil, apperr.Validation("linkId", "unknown link "+linkID)
		}
		active = !list[i].IsActive
		list[i].IsActive = active
		return list, nil
	}, func(ctx context.Context) error {
		return s.svc.UpdateLink(ctx, linkID, links.Update{IsActive: &active})
	})
}

// Update applies a partial change to one link.
func (s *State) Update(ctx context.Context, linkID string, fields links.Update) error {
	if fields.URL != nil {
		normalized := links.NormalizeURL(*fields.URL)
		fields.URL = &normalized
	}
	return s.mutate(ctx, "update", func(list []links.Link) ([]links.Link, error) {
		i := indexOf(list, linkID)
		if i < 0 {
			return nil, apperr.Validation("linkId", "unknown link "+linkID)
		}
		list[i] = fields.Apply(list[i])
		return list, nil
	}, func(ctx context.Context) error {
		return s.svc.UpdateLink(ctx, linkID, fields)
	})
}

func (s *State) Delete(ctx context.Context, linkID string) error {
	return s.mutate(ctx, "delete", func(list []links.Link) ([]links.Link, error) {
		i := indexOf(list, linkID)
		if i < 0 {
			return nil, apperr.Validation("linkId", "unknown link "+linkID)
		}
		return slices.Delete(list, i, i+1), nil
	}, func(ctx context.Context) error {
		return s.svc.DeleteLink(ctx, linkID)
	})
}

// Move drags the link at position from to position to (zero based) and
// renumbers every link 1..n.
func (s *State) Move(ctx context.Context, from, to int) error {
	var orders map[string]int
	return s.mutate(ctx, "reorder", func(list []links.Link) ([]links.Link, error) {
		if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
			return nil, apperr.Validation("order", fmt.Sprintf("position out of range: %d -> %d", from, to))
		}
		moved := list[from]
		list = slices.Delete(list, from, from+1)
		list = slices.Insert(list, to, moved)
		orders = renumber(list)
		return list, nil
	}, func(ctx context.Context) error {
		return s.svc.UpdateLinkOrders(ctx, s.owner.UserID, orders, s.owner.UserEmail)
	})
}

// Reorder puts the links in the order of ids. Links not named keep their
// relative order after the named ones.
func (s *State) Reorder(ctx context.Context, ids []string) error {
	var orders map[string]int
	return s.mutate(ctx, "reorder", func(list []links.Link) ([]links.Link, error) {
		rank := make(map[string]int, len(ids))
		for i, id := range ids {
			if indexOf(list, id) < 0 {
				return nil, apperr.Validation("linkId", "unknown link "+id)
			}
			rank[id] = i
		}
		slices.SortStableFunc(list, func(a, b links.Link) int {
			ra, okA := rank[a.ID]
			rb, okB := rank[b.ID]
			switch {
			case okA && okB:
				return ra - rb
			case okA:
				return -1
			case okB:
				return 1
			}
			return 0
		})
		orders = renumber(list)
		return list, nil
	}, func(ctx context.Context) error {
		return s.svc.UpdateLinkOrders(ctx, s.owner.UserID, orders, s.owner.UserEmail)
	})
}

// Add validates and saves a new link at the end of the list, then reloads.
func (s *State) Add(ctx context.Context, in links.SaveLinkInput) (string, error) {
	in.URL = links.NormalizeURL(in.URL)
	res := links.ValidateLinkData(links.LinkData{
		Title:       in.Title,
		URL:         in.URL,
		Category:    in.Category,
		Description: in.Description,
	})
	if !res.IsValid {
		return "", apperr.Validation("link", strings.Join(res.Errors, " "))
	}

	in.UserID = s.owner.UserID
	in.UserEmail = s.owner.UserEmail
	if in.Order == 0 {
		s.mu.RLock()
		in.Order = nextOrder(s.links)
		s.mu.RUnlock()
	}

	id, err := s.svc.SaveLink(ctx, in)
	if err != nil {
		return "", &MutationError{Op: "add", Err: err}
	}
	if err := s.Load(ctx); err != nil {
		logger.Warn("failed to reload links after add", zap.Error(err))
	}
	return id, nil
}

// mutate applies change to a copy, publishes it, and calls commit. A commit
// error restores the snapshot taken before the change.
func (s *State) mutate(
	ctx context.Context,
	op string,
	change func([]links.Link) ([]links.Link, error),
	commit func(context.Context) error,
) error {
	s.mu.Lock()
	snapshot := s.links
	next, err := change(slices.Clone(s.links))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.links = next
	s.mu.Unlock()

	if err := commit(ctx); err != nil {
		s.mu.Lock()
		s.links = snapshot
		s.mu.Unlock()

		logger.Warn("link change rejected, rolled back",
			zap.String("op", op),
			zap.Error(err),
		)
		return &MutationError{Op: op, Err: err}
	}
	return nil
}

func (s *State) index(linkID string) int {
	return indexOf(s.links, linkID)
}

func indexOf(list []links.Link, linkID string) int {
	return slices.IndexFunc(list, func(l links.Link) bool { return l.ID == linkID })
}

func renumber(list []links.Link) map[string]int {
	orders := make(map[string]int, len(list))
	for i := range list {
		list[i].Order = i + 1
		orders[list[i].ID] = i + 1
	}
	return orders
}

func nextOrder(list []links.Link) int {
	highest := 0
	for _, l := range list {
		highest = max(highest, l.Order)
	}
	return highest + 1
}
