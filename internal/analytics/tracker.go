// Package analytics records page visits and link clicks and reads back the
// aggregated statistics. Recording is best effort: a failure is logged and
// never reaches the caller.
package analytics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/metrics"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/internal/session"
	"github.com/IgorGrieder/linkhub/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultAsyncTimeout = 10 * time.Second

// UserInfo identifies the visitor when the caller knows who it is.
type UserInfo struct {
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

// Identity exposes the logged-in user. *session.Manager implements it.
type Identity interface {
	CurrentUser() *session.User
}

type Deps struct {
	Sink     Sink
	Store    remote.Caller
	Storage  storage.Store
	IP       IPResolver
	Identity Identity
	// AsyncTimeout bounds the Go* variants. Defaults to 10s.
	AsyncTimeout time.Duration
}

type Tracker struct {
	sink         Sink
	store        remote.Caller
	kv           storage.Store
	ip           IPResolver
	identity     Identity
	asyncTimeout time.Duration
	now          func() time.Time

	sessionMu sync.Mutex
	wg        sync.WaitGroup
}

func NewTracker(d Deps) *Tracker {
	if d.Sink == nil && d.Store != nil {
		d.Sink = NewRemoteSink(d.Store)
	}
	if d.IP == nil {
		d.IP = ContextResolver{}
	}
	if d.AsyncTimeout <= 0 {
		d.AsyncTimeout = defaultAsyncTimeout
	}
	return &Tracker{
		sink:         d.Sink,
		store:        d.Store,
		kv:           d.Storage,
		ip:           d.IP,
		identity:     d.Identity,
		asyncTimeout: d.AsyncTimeout,
		now:          time.Now,
	}
}

type visitPayload struct {
	SessionID  string `json:"sessionId"`
	Page       string `json:"page"`
	UserID     string `json:"userId,omitempty"`
	UserEmail  string `json:"userEmail,omitempty"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	Timestamp  string `json:"timestamp"`
}

type clickPayload struct {
	SessionID string `json:"sessionId"`
	LinkID    string `json:"linkId"`
	LinkTitle string `json:"linkTitle,omitempty"`
	LinkURL   string `json:"linkUrl,omitempty"`
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// LogVisit records a page view. It never fails; see the package doc.
func (t *Tracker) LogVisit(ctx context.Context, page string, user *UserInfo, isLoggedIn bool) {
	who, loggedIn := t.who(user, isLoggedIn)
	ctx = t.withIP(ctx)

	t.send(ctx, remote.ActionVisitorLog, visitPayload{
		SessionID:  t.SessionID(ctx),
		Page:       page,
		UserID:     who.UserID,
		UserEmail:  who.UserEmail,
		IsLoggedIn: loggedIn,
		Timestamp:  t.timestamp(),
	})
}

// LogLinkClick records a click on a public link.
func (t *Tracker) LogLinkClick(ctx context.Context, linkID, title, url string, user *UserInfo) {
	if strings.TrimSpace(linkID) == "" {
		logger.Warn("link click without link id, dropping")
		metrics.TelemetryEventsTotal.WithLabelValues(remote.ActionLinkClick, "dropped").Inc()
		return
	}
	who, _ := t.who(user, false)
	ctx = t.withIP(ctx)

	t.send(ctx, remote.ActionLinkClick, clickPayload{
		SessionID: t.SessionID(ctx),
		LinkID:    linkID,
		LinkTitle: title,
		LinkURL:   url,
		UserID:    who.UserID,
		UserEmail: who.UserEmail,
		Timestamp: t.timestamp(),
	})
}

// GoLogVisit runs LogVisit in the background, detached from ctx cancellation
// but keeping its values.
func (t *Tracker) GoLogVisit(ctx context.Context, page string, user *UserInfo, isLoggedIn bool) {
	t.goDetached(ctx, func(ctx context.Context) { t.LogVisit(ctx, page, user, isLoggedIn) })
}

func (t *Tracker) GoLogLinkClick(ctx context.Context, linkID, title, url string, user *UserInfo) {
	t.goDetached(ctx, func(ctx context.Context) { t.LogLinkClick(ctx, linkID, title, url, user) })
}

// Wait blocks until background sends finish. Used on shutdown and in tests.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) goDetached(ctx context.Context, fn func(context.Context)) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.asyncTimeout)
		defer cancel()
		fn(ctx)
	}()
}

type sessionIDKey struct{}

// WithSessionID makes SessionID return id for events logged with ctx. The
// gateway uses it to record each visitor under their own browser session.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, strings.TrimSpace(id))
}

// SessionID returns the id attached with WithSessionID, or the persisted
// session id, minting and storing a new UUIDv7 on first use. Without storage
// every call mints a fresh id.
func (t *Tracker) SessionID(ctx context.Context) string {
	if id, _ := ctx.Value(sessionIDKey{}).(string); id != "" {
		return id
	}

	t.sessionMu.Lock()
	defer t.sessionMu.Unlock()

	if t.kv != nil {
		id, err := t.kv.Get(ctx, session.KeySessionID)
		if err == nil && strings.TrimSpace(id) != "" {
			return id
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("failed to read session id", zap.Error(err))
		}
	}

	id := newSessionID()
	if t.kv != nil {
		if err := t.kv.Set(ctx, session.KeySessionID, id); err != nil {
			logger.Warn("failed to persist session id", zap.Error(err))
		}
	}
	return id
}

func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// who prefers the logged-in identity over whatever the caller passed.
func (t *Tracker) who(user *UserInfo, isLoggedIn bool) (UserInfo, bool) {
	if t.identity != nil {
		if u := t.identity.CurrentUser(); u != nil {
			return UserInfo{UserID: u.ID, UserEmail: u.Email}, true
		}
	}
	if user == nil {
		return UserInfo{}, isLoggedIn
	}
	return *user, isLoggedIn
}

func (t *Tracker) withIP(ctx context.Context) context.Context {
	if remote.ClientIP(ctx) != "" {
		return ctx
	}
	if ip := t.ip.Resolve(ctx); ip != "" {
		return remote.WithClientIP(ctx, ip)
	}
	return ctx
}

func (t *Tracker) send(ctx context.Context, action string, payload any) {
	if t.sink == nil {
		metrics.TelemetryEventsTotal.WithLabelValues(action, "dropped").Inc()
		return
	}
	if err := t.sink.Send(ctx, action, payload); err != nil {
		metrics.TelemetryEventsTotal.WithLabelValues(action, "failed").Inc()
		logger.Warn("failed to record telemetry event",
			zap.String("action", action),
			zap.Error(err),
		)
		return
	}
	metrics.TelemetryEventsTotal.WithLabelValues(action, "sent").Inc()
}

func (t *Tracker) timestamp() string {
	return t.now().UTC().Format(time.RFC3339)
}
