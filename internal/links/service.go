package links

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/cache"
	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	appvalidation "github.com/IgorGrieder/linkhub/internal/infrastructure/validation"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/internal/subject"
	"go.uber.org/zap"
)

// Service wraps the remote store for one user's link collection.
//
// Failure policy differs per operation and callers rely on it:
// GetLinks fails open (empty list), every mutation returns the error.
type Service struct {
	store remote.Caller
	cache *cache.Cache[[]Link]

	// emails remembers which email a user id was listed with, so a write
	// naming only one of them still drops the collection cached under the
	// other.
	mu     sync.Mutex
	emails map[string]string
}

func NewService(store remote.Caller, c *cache.Cache[[]Link]) *Service {
	return &Service{store: store, cache: c, emails: make(map[string]string)}
}

type ownerRequest struct {
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

type updateLinkRequest struct {
	LinkID  string `json:"linkId"`
	Updates Update `json:"updates"`
}

type updateOrdersRequest struct {
	UserID     string         `json:"userId,omitempty"`
	UserEmail  string         `json:"userEmail,omitempty"`
	LinkOrders map[string]int `json:"linkOrders"`
}

type batchUpdateRequest struct {
	Updates []BatchUpdate `json:"updates"`
}

type deleteLinkRequest struct {
	LinkID string `json:"linkId"`
}

// cacheKey prefers the email, matching how the editor looks links up.
func cacheKey(userID, userEmail string) string {
	if email := subject.ByEmail(userEmail); !email.IsZero() {
		return "email_" + email.Value()
	}
	return "user_" + strings.TrimSpace(userID)
}

func ownerKeys(userID, userEmail string) []string {
	keys := make([]string, 0, 2)
	if id := strings.TrimSpace(userID); id != "" {
		keys = append(keys, "user_"+id)
	}
	if email := subject.ByEmail(userEmail); !email.IsZero() {
		keys = append(keys, "email_"+email.Value())
	}
	return keys
}

func (s *Service) alias(userID, userEmail string) {
	id := strings.TrimSpace(userID)
	email := subject.ByEmail(userEmail).Value()
	if id == "" || email == "" {
		return
	}
	s.mu.Lock()
	s.emails[id] = email
	s.mu.Unlock()
}

// forgetOwner drops every collection cached for the owner, whichever
// identifier it was cached under.
func (s *Service) forgetOwner(userID, userEmail string) {
	id := strings.TrimSpace(userID)
	email := subject.ByEmail(userEmail).Value()

	s.mu.Lock()
	if email == "" && id != "" {
		email = s.emails[id]
	}
	if id == "" && email != "" {
		for knownID, knownEmail := range s.emails {
			if knownEmail == email {
				id = knownID
				break
			}
		}
	}
	s.mu.Unlock()

	s.cache.Delete(ownerKeys(id, email)...)
	s.cache.DeleteFunc(func(_ string, list []Link) bool {
		for _, l := range list {
			if id != "" && l.UserID == id {
				return true
			}
			if email != "" && subject.ByEmail(l.UserEmail).Value() == email {
				return true
			}
		}
		return false
	})
}

// GetLinks returns the user's links. Any remote or transport failure yields
// an empty list and a nil error; the only error is a missing identifier.
func (s *Service) GetLinks(ctx context.Context, userID, userEmail string) ([]Link, error) {
	if strings.TrimSpace(userID) == "" && strings.TrimSpace(userEmail) == "" {
		return nil, apperr.Validation("userId", constants.MsgLinkOwnerRequired)
	}

	s.alias(userID, userEmail)
	key := cacheKey(userID, userEmail)
	if cached, ok := s.cache.Get(key); ok {
		return slices.Clone(cached), nil
	}

	env, err := s.store.Call(ctx, remote.ActionGetLinks, ownerRequest{
		UserID:    strings.TrimSpace(userID),
		UserEmail: strings.TrimSpace(userEmail),
	})
	if err != nil {
		logger.Warn("failed to load links, returning empty list",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("user_email", userEmail),
		)
		return []Link{}, nil
	}
	if !env.Success {
		logger.Warn("remote store rejected get_links, returning empty list",
			zap.String("message", env.Message),
			zap.String("user_id", userID),
		)
		return []Link{}, nil
	}

	var raw []map[string]any
	if err := env.Decode("links", &raw); err != nil {
		logger.Warn("malformed links payload, returning empty list", zap.Error(err))
		return []Link{}, nil
	}

	out := FromRecords(raw)
	s.cache.Set(key, out)
	return slices.Clone(out), nil
}

// SaveLink creates a link and returns the id assigned by the store.
func (s *Service) SaveLink(ctx context.Context, in SaveLinkInput) (string, error) {
	if err := appvalidation.Validate(in); err != nil {
		if strings.TrimSpace(in.Title) == "" {
			return "", apperr.Validation("title", constants.MsgTitleRequired)
		}
		if strings.TrimSpace(in.URL) == "" {
			return "", apperr.Validation("url", constants.MsgURLRequired)
		}
		return "", apperr.Validation("link", err.Error())
	}
	if strings.TrimSpace(in.UserID) == "" && strings.TrimSpace(in.UserEmail) == "" {
		return "", apperr.Validation("userId", constants.MsgLinkOwnerRequired)
	}

	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	if in.Style == "" {
		in.Style = StyleSimple
	}
	if in.IsActive == nil {
		active := true
		in.IsActive = &active
	}

	env, err := remote.Do(ctx, s.store, remote.ActionSaveLink, in)
	if err != nil {
		return "", err
	}

	s.forgetOwner(in.UserID, in.UserEmail)
	return env.String("linkId"), nil
}

// UpdateLink sends a partial change. Success clears the whole cache because
// the owner of linkID is not known here.
func (s *Service) UpdateLink(ctx context.Context, linkID string, fields Update) error {
	linkID = strings.TrimSpace(linkID)
	if linkID == "" {
		return apperr.Validation("linkId", constants.MsgLinkIDRequired)
	}

	if _, err := remote.Do(ctx, s.store, remote.ActionUpdateLink, updateLinkRequest{
		LinkID:  linkID,
		Updates: fields,
	}); err != nil {
		return err
	}

	s.cache.Clear()
	return nil
}

// ToggleLinkActive shows or hides a link on the public page.
func (s *Service) ToggleLinkActive(ctx context.Context, linkID string, active bool) error {
	return s.UpdateLink(ctx, linkID, Update{IsActive: &active})
}

// UpdateLinkOrders rewrites the order of several links of one user.
func (s *Service) UpdateLinkOrders(ctx context.Context, userID string, orders map[string]int, userEmail string) error {
	if strings.TrimSpace(userID) == "" && strings.TrimSpace(userEmail) == "" {
		return apperr.Validation("userId", constants.MsgLinkOwnerRequired)
	}

	if _, err := remote.Do(ctx, s.store, remote.ActionUpdateLinkOrders, updateOrdersRequest{
		UserID:     strings.TrimSpace(userID),
		UserEmail:  strings.TrimSpace(userEmail),
		LinkOrders: orders,
	}); err != nil {
		return err
	}

	s.forgetOwner(userID, userEmail)
	return nil
}

// BatchUpdateLinks applies several partial changes in one round trip.
func (s *Service) BatchUpdateLinks(ctx context.Context, updates []BatchUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		if strings.TrimSpace(u.LinkID) == "" {
			return apperr.Validation("linkId", constants.MsgLinkIDRequired)
		}
	}

	if _, err := remote.Do(ctx, s.store, remote.ActionBatchUpdateLinks, batchUpdateRequest{Updates: updates}); err != nil {
		return err
	}

	s.cache.Clear()
	return nil
}

func (s *Service) DeleteLink(ctx context.Context, linkID string) error {
	linkID = strings.TrimSpace(linkID)
	if linkID == "" {
		return apperr.Validation("linkId", constants.MsgLinkIDRequired)
	}

	if _, err := remote.Do(ctx, s.store, remote.ActionDeleteLink, deleteLinkRequest{LinkID: linkID}); err != nil {
		return err
	}

	s.cache.Clear()
	return nil
}

// ClearCache drops every cached collection.
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.mu.Lock()
	clear(s.emails)
	s.mu.Unlock()
}

// Prime stores links fetched through another path, such as the combined
// profile-and-links call.
func (s *Service) Prime(userID, userEmail string, list []Link) {
	s.cache.Set(cacheKey(userID, userEmail), slices.Clone(list))
}

// CleanExpiredCache sweeps stale collections and returns how many were removed.
func (s *Service) CleanExpiredCache() int {
	removed := s.cache.CleanExpired()
	if removed > 0 {
		logger.Debug("links cache swept", zap.Int("removed", removed))
	}
	return removed
}
