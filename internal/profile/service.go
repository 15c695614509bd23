package profile

import (
	"context"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/cache"
	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	appvalidation "github.com/IgorGrieder/linkhub/internal/infrastructure/validation"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/internal/subject"
	"go.uber.org/zap"
)

// Service reads and writes profiles through the remote store.
//
// Every profile is cached under all of its identifiers (id, email and
// username). Aliases are written together and dropped together, so a lookup
// by username is as warm as a lookup by id.
type Service struct {
	store remote.Caller
	cache *cache.Cache[Profile]
}

func NewService(store remote.Caller, c *cache.Cache[Profile]) *Service {
	return &Service{store: store, cache: c}
}

// updateRequest is a partial save_profile: only the identifier and the
// changed fields are sent.
type updateRequest struct {
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
	Update
}

// GetProfile looks a profile up by the strongest identifier in l.
// Transport failures are returned as *apperr.TransportError.
func (s *Service) GetProfile(ctx context.Context, l Lookup) (*Result, error) {
	subj := l.subject()
	if subj.IsZero() {
		return nil, apperr.Validation("userId", constants.MsgProfileIDRequired)
	}

	if cached, ok := s.cache.Get(subj.Key()); ok {
		return &Result{Success: true, Profile: &cached}, nil
	}

	env, err := s.store.Call(ctx, remote.ActionGetProfile, Lookup{
		UserID:    strings.TrimSpace(l.UserID),
		Username:  strings.TrimPrefix(strings.TrimSpace(l.Username), "@"),
		UserEmail: strings.TrimSpace(l.UserEmail),
	})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return &Result{Success: false, Message: env.Message}, nil
	}

	var raw map[string]any
	if err := env.Decode("profile", &raw); err != nil {
		return nil, &apperr.TransportError{Action: remote.ActionGetProfile, Kind: apperr.KindDecode, Err: err}
	}
	if raw == nil {
		return &Result{Success: false, Message: constants.MsgProfileNotFound}, nil
	}

	p := FromRecord(raw)
	s.remember(p, subj.Key())
	return &Result{Success: true, Profile: &p}, nil
}

// SaveProfile creates or updates a profile. The store may assign a different
// user id than the one sent; the returned ActualUserID is authoritative.
func (s *Service) SaveProfile(ctx context.Context, in SaveInput) (*SaveResult, error) {
	if strings.TrimSpace(in.UserEmail) == "" {
		return nil, apperr.Validation("userEmail", constants.MsgProfileEmailMissing)
	}
	if err := appvalidation.Validate(in); err != nil {
		return nil, apperr.Validation("profile", err.Error())
	}

	env, err := s.store.Call(ctx, remote.ActionSaveProfile, in)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return &SaveResult{Success: false, Message: env.Message}, nil
	}

	actualID := env.String("actualUserId")
	if actualID == "" {
		actualID = strings.TrimSpace(in.UserID)
	}

	saved := in.profile(actualID)
	s.forget(saved)
	if actualID != "" {
		s.remember(saved)
	}

	return &SaveResult{Success: true, ActualUserID: actualID, Message: env.Message}, nil
}

// UpdateProfile applies a partial change to the profile named by subj, which
// must be an id or an email. A success=false answer is returned as
// *apperr.RemoteError.
func (s *Service) UpdateProfile(ctx context.Context, subj subject.Subject, fields Update) error {
	req := updateRequest{Update: fields}
	switch subj.Kind() {
	case subject.KindID:
		req.UserID = subj.Value()
	case subject.KindEmail:
		req.UserEmail = subj.Value()
	}
	if subj.IsZero() || (req.UserID == "" && req.UserEmail == "") {
		return apperr.Validation("userId", constants.MsgProfileOwnerMissing)
	}

	if _, err := remote.Do(ctx, s.store, remote.ActionSaveProfile, req); err != nil {
		return err
	}

	if cached, ok := s.cache.Get(subj.Key()); ok {
		merged := fields.Apply(cached)
		s.forget(cached)
		s.remember(merged, subj.Key())
	}
	return nil
}

// Prime caches a profile fetched through another action.
func (s *Service) Prime(p Profile) {
	if p.UserID == "" && p.UserEmail == "" && p.Username == "" {
		return
	}
	s.forget(p)
	s.remember(p)
}

// ClearCache drops every alias of the profile with userID, or the whole cache
// when userID is empty.
func (s *Service) ClearCache(userID string) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		s.cache.Clear()
		return
	}
	s.cache.DeleteFunc(func(key string, p Profile) bool {
		return p.UserID == userID || key == subject.ByID(userID).Key()
	})
}

// CleanExpiredCache sweeps stale entries and returns how many were removed.
func (s *Service) CleanExpiredCache() int {
	removed := s.cache.CleanExpired()
	if removed > 0 {
		logger.Debug("profile cache swept", zap.Int("removed", removed))
	}
	return removed
}

// remember writes p under all of its aliases plus any extra lookup keys.
func (s *Service) remember(p Profile, extra ...string) {
	s.cache.SetMany(append(p.Keys(), extra...), p)
}

// forget drops every cached alias that belongs to the same user as p.
func (s *Service) forget(p Profile) {
	email := subject.ByEmail(p.UserEmail).Value()
	s.cache.DeleteFunc(func(_ string, cached Profile) bool {
		if p.UserID != "" && cached.UserID == p.UserID {
			return true
		}
		return email != "" && subject.ByEmail(cached.UserEmail).Value() == email
	})
}
