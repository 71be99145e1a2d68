// Package login holds the login view's state machine:
// idle -> loggingIn -> ok | error. On ok it hands off to the authenticated
// landing view once the session reports a logged-in user.
package login

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/userdesk/internal/client/session"
	"github.com/dmitrijs2005/userdesk/internal/common"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

const (
	MsgLoginFailed = "Login failed. Please check your credentials."
	MsgLoginOK     = "Login successful! Redirecting..."
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoggingIn Status = "loggingIn"
	StatusOK        Status = "ok"
	StatusError     Status = "error"
)

// Authenticator is implemented by *session.Manager.
type Authenticator interface {
	Login(ctx context.Context, email, password string) bool
	Current() session.Session
}

// Controller is safe for concurrent use.
type Controller struct {
	auth     Authenticator
	navigate func()
	logger   logging.Logger

	mu        sync.Mutex
	status    Status
	navigated bool
}

// NewController returns an idle controller. navigate is called at most once,
// when the session becomes logged in through this controller or is already
// logged in on Enter.
func NewController(auth Authenticator, navigate func(), logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if navigate == nil {
		navigate = func() {}
	}
	return &Controller{auth: auth, navigate: navigate, logger: logger, status: StatusIdle}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Message is the text shown under the form for the current status.
func (c *Controller) Message() string {
	switch c.Status() {
	case StatusOK:
		return MsgLoginOK
	case StatusError:
		return MsgLoginFailed
	}
	return ""
}

// Navigated reports whether the hand-off has already happened.
func (c *Controller) Navigated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.navigated
}

// Enter resets the view. A session that is already logged in navigates away
// immediately and Enter returns true.
func (c *Controller) Enter() bool {
	c.mu.Lock()
	c.status = StatusIdle
	c.navigated = false
	c.mu.Unlock()

	return c.maybeNavigate()
}

// Submit attempts a login. It returns common.ErrBusy while a previous attempt
// is still running; otherwise the result is reflected in Status.
func (c *Controller) Submit(ctx context.Context, email, password string) error {
	c.mu.Lock()
	if c.status == StatusLoggingIn {
		c.mu.Unlock()
		return common.ErrBusy
	}
	c.status = StatusLoggingIn
	c.mu.Unlock()

	// A session that ended since the last hand-off (logout or expiry) earns a
	// new one.
	if !c.auth.Current().IsLoggedIn {
		c.mu.Lock()
		c.navigated = false
		c.mu.Unlock()
	}

	ok := c.auth.Login(ctx, email, password)

	c.mu.Lock()
	if ok {
		c.status = StatusOK
	} else {
		c.status = StatusError
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Info(ctx, "login failed", "email", email)
		return nil
	}
	c.maybeNavigate()
	return nil
}

func (c *Controller) maybeNavigate() bool {
	if !c.auth.Current().IsLoggedIn {
		return false
	}

	c.mu.Lock()
	if c.navigated {
		c.mu.Unlock()
		return true
	}
	c.navigated = true
	c.mu.Unlock()

	c.navigate()
	return true
}
