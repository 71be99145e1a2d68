package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/userdesk/internal/client/api"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

const (
	loginPath  = "/api/user/login"
	logoutPath = "/api/user/logout"
)

// Transport is the part of api.Client the manager needs.
type Transport interface {
	Do(ctx context.Context, req api.Request) (*api.Response, error)
	ClearCredentials(ctx context.Context) error
}

// Manager tracks the current session and keeps the store in step with it.
// It implements api.Invalidator.
type Manager struct {
	store     Store
	transport Transport
	logger    logging.Logger

	mu      sync.RWMutex
	current Session
}

// NewManager returns a manager in the logged-out state. Call Restore to pick
// up a previously saved session.
func NewManager(store Store, transport Transport, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Manager{store: store, transport: transport, logger: logger, current: LoggedOut()}
}

// Restore loads the stored session. Missing or malformed records yield the
// logged-out default; the store is not rewritten.
func (m *Manager) Restore(ctx context.Context) Session {
	s := LoggedOut()

	raw, err := m.store.Load(ctx)
	switch {
	case err != nil:
		m.logger.Warn(ctx, "session store unreadable, starting logged out", "error", err)
	case raw == nil:
		m.logger.Debug(ctx, "no stored session")
	default:
		decoded, err := Decode(raw)
		if err != nil {
			m.logger.Warn(ctx, "discarding stored session", "error", err)
			break
		}
		s = decoded
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return s
}

// Current returns a copy of the in-memory session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Login posts the credentials and commits a logged-in session only when the
// server answers 200. Any other status, and any transport failure, returns
// false and leaves the session untouched. Nothing is retried.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	resp, err := m.transport.Do(ctx, api.Request{
		Method:         http.MethodPost,
		Path:           loginPath,
		Body:           map[string]string{"email": email, "password": password},
		SkipInvalidate: true,
	})
	if err != nil {
		m.logger.Info(ctx, "login rejected", "email", email, "error", err)
		return false
	}
	if resp.Status != http.StatusOK {
		m.logger.Info(ctx, "login rejected", "email", email, "status", resp.Status)
		return false
	}

	m.commit(ctx, Session{IsLoggedIn: true, Identity: Identity{Email: email}})
	m.logger.Info(ctx, "logged in", "email", email)
	return true
}

// Logout tells the server, ignoring any failure, then always ends up logged
// out locally with credentials dropped.
func (m *Manager) Logout(ctx context.Context) {
	resp, err := m.transport.Do(ctx, api.Request{Method: http.MethodPost, Path: logoutPath, SkipInvalidate: true})
	switch {
	case err != nil:
		m.logger.Warn(ctx, "logout request failed", "error", err)
	case !resp.OK():
		m.logger.Warn(ctx, "logout request rejected", "status", resp.Status)
	}
	m.clear(ctx)
	m.logger.Info(ctx, "logged out")
}

// Invalidate is the local half of Logout: no network call. The API client
// calls it when the server answers 401.
func (m *Manager) Invalidate(ctx context.Context) {
	m.clear(ctx)
	m.logger.Info(ctx, "session invalidated")
}

func (m *Manager) clear(ctx context.Context) {
	m.commit(ctx, LoggedOut())
	if err := m.transport.ClearCredentials(ctx); err != nil {
		m.logger.Error(ctx, "failed to clear credentials", "error", err)
	}
}

// commit writes the store first, then memory. A failed write is logged and
// memory is updated anyway; the next commit rewrites the whole record.
func (m *Manager) commit(ctx context.Context, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := Encode(s)
	if err == nil {
		err = m.store.Save(ctx, b)
	}
	if err != nil {
		m.logger.Error(ctx, "failed to persist session", "error", err)
	}
	m.current = s
}

var _ api.Invalidator = (*Manager)(nil)
