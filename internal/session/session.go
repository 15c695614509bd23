// Package session holds the authenticated identity and mirrors it into a
// storage.Store so it survives restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	appvalidation "github.com/IgorGrieder/linkhub/internal/infrastructure/validation"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/internal/storage"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Storage keys. sessionId is owned by the analytics tracker but lives in the
// same store and outlives logouts.
const (
	KeyCurrentUser     = "currentUser"
	KeyAuthenticated   = "isAuthenticated"
	KeyRememberedEmail = "rememberedEmail"
	KeySessionID       = "sessionId"
)

// User is the identity snapshot kept while logged in.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Template string `json:"template,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Manager is safe for concurrent use. Writes to the store are last writer
// wins; two processes sharing a file store can overwrite each other.
type Manager struct {
	store remote.Caller
	kv    storage.Store

	mu   sync.RWMutex
	user *User
}

func NewManager(store remote.Caller, kv storage.Store) *Manager {
	return &Manager{store: store, kv: kv}
}

// Login authenticates against the store and persists the identity. When
// remember is false any previously remembered email is forgotten.
func (m *Manager) Login(ctx context.Context, email, password string, remember bool) (*User, error) {
	req := loginRequest{Email: strings.TrimSpace(email), Password: password}
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("email", constants.MsgLoginFieldsRequired)
	}
	if err := appvalidation.Validate(req); err != nil {
		return nil, apperr.Validation("email", constants.MsgLoginFieldsRequired)
	}

	env, err := remote.Do(ctx, m.store, remote.ActionLogin, req)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := env.Decode("user", &raw); err != nil || raw == nil {
		return nil, &apperr.TransportError{Action: remote.ActionLogin, Kind: apperr.KindDecode, Err: err}
	}
	u := userFromRecord(raw)
	if u.Email == "" {
		u.Email = req.Email
	}

	if err := m.persist(ctx, &u); err != nil {
		return nil, err
	}
	if remember {
		err = m.kv.Set(ctx, KeyRememberedEmail, req.Email)
	} else {
		err = m.kv.Delete(ctx, KeyRememberedEmail)
	}
	if err != nil {
		logger.Warn("failed to update remembered email", zap.Error(err))
	}

	logger.Info("user logged in", zap.String("user_id", u.ID))
	return m.CurrentUser(), nil
}

// Logout forgets the identity. The remembered email and session id stay.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()

	if err := m.kv.Delete(ctx, KeyCurrentUser, KeyAuthenticated); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Restore reloads a persisted identity. It returns nil when nobody is logged
// in; a corrupt snapshot is discarded and treated the same way.
func (m *Manager) Restore(ctx context.Context) (*User, error) {
	flag, err := m.kv.Get(ctx, KeyAuthenticated)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	raw, err := m.kv.Get(ctx, KeyCurrentUser)
	if errors.Is(err, storage.ErrNotFound) || flag != "true" {
		return nil, m.Logout(ctx)
	}
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		logger.Warn("discarding unreadable session snapshot", zap.Error(err))
		return nil, m.Logout(ctx)
	}

	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	return m.CurrentUser(), nil
}

// CurrentUser returns a copy of the identity, or nil when logged out.
func (m *Manager) CurrentUser() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

// UpdateUser applies fn to the identity and persists the result, typically
// after a profile edit.
func (m *Manager) UpdateUser(ctx context.Context, fn func(u *User)) error {
	u := m.CurrentUser()
	if u == nil {
		return apperr.Validation("user", constants.MsgPermissionDenied)
	}
	fn(u)
	return m.persist(ctx, u)
}

// RememberedEmail returns the email saved by a "remember me" login.
func (m *Manager) RememberedEmail(ctx context.Context) string {
	email, err := m.kv.Get(ctx, KeyRememberedEmail)
	if err != nil {
		return ""
	}
	return email
}

func (m *Manager) persist(ctx context.Context, u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := m.kv.Set(ctx, KeyCurrentUser, string(raw)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := m.kv.Set(ctx, KeyAuthenticated, "true"); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.user = u
	m.mu.Unlock()
	return nil
}

func userFromRecord(rec map[string]any) User {
	id := text(rec["id"])
	if id == "" {
		id = text(rec["userId"])
	}
	email := text(rec["email"])
	if email == "" {
		email = text(rec["userEmail"])
	}
	return User{
		ID:       id,
		Email:    email,
		Name:     text(rec["name"]),
		Username: text(rec["username"]),
		Avatar:   text(rec["avatar"]),
		Template: text(rec["template"]),
	}
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}
