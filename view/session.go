package view

import (
	"context"
	"time"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/state"
	"github.com/deemkeen/postbox/util"
)

const (
	MsgSessionExpired = "Your session has expired."
	MsgLoggedIn       = "You have successfully logged in."
	MsgLoginFailed    = "Invalid username / password."
	MsgLoggedOut      = "You have successfully logged out."
)

// SessionCheck validates a persisted session once per process.
type SessionCheck struct {
	env  *Env
	ctrl *request.Controller
	now  func() time.Time
	ran  bool
}

func NewSessionCheck(env *Env) *SessionCheck {
	return &SessionCheck{
		env:  env,
		ctrl: request.NewController(env.Loop, "session-check"),
		now:  time.Now,
	}
}

// Run issues the check when the store starts logged in. It returns nil when
// no request was made, including every call after the first.
func (c *SessionCheck) Run() *request.Handle {
	if c.ran {
		return nil
	}
	c.ran = true

	session := c.env.session()
	if !session.LoggedIn {
		return nil
	}
	return request.Issue(c.ctrl,
		func(ctx context.Context) (bool, error) {
			return c.env.Backend.CheckToken(ctx, session.Token)
		},
		func(valid bool) {
			if !valid {
				c.expire()
			}
		},
		func(err error) {
			// without an answer, fall back to the token's own expiry
			if state.TokenExpired(session.Token, c.now()) {
				util.NewLogger("view").WithField("user", session.Username).Info("stored token already expired")
				c.expire()
			}
		},
	)
}

// Cancel drops an outstanding check. It is safe to call at any time.
func (c *SessionCheck) Cancel() {
	c.ctrl.Close()
}

func (c *SessionCheck) expire() {
	c.env.Global.Dispatch(state.Logout{})
	c.env.flash(MsgSessionExpired)
}

// Login is the sign-in form action.
type Login struct {
	env  *Env
	ctrl *request.Controller
}

func NewLogin(env *Env) *Login {
	return &Login{env: env, ctrl: request.NewController(env.Loop, "login")}
}

// Submit sends the credentials. A newer submit supersedes an older one.
func (l *Login) Submit(username string, password string) *request.Handle {
	return request.Issue(l.ctrl,
		func(ctx context.Context) (*domain.User, error) {
			return l.env.Backend.Login(ctx, username, password)
		},
		func(user *domain.User) {
			if user == nil {
				l.env.flash(MsgLoginFailed)
				return
			}
			l.env.Global.Dispatch(state.Login{Data: *user})
			l.env.flash(MsgLoggedIn)
		},
		nil,
	)
}

func (l *Login) Unmount() {
	l.ctrl.Close()
}

// Logout ends the session locally. The persistence listener clears storage.
func Logout(env *Env) {
	env.Global.Dispatch(state.Logout{})
	env.flash(MsgLoggedOut)
}
