package logingate

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-homepage"
	"github.com/goliatone/go-homepage/session"
)

type pendingState int

const (
	stateUnchanged pendingState = iota
	stateToLogin
	stateToLogout
)

// LoginContext is the request-scoped identity handle. It is created by
// the gate before the handler runs and consumed by the gate afterwards;
// handlers read the resolved identity and request at most one identity
// transition, which the gate applies after the response is computed.
type LoginContext struct {
	info    *homepage.UserInfo
	state   pendingState
	loginID int64

	rec      *session.Record
	buffered map[string]string
}

// Info returns the resolved identity, or nil for an anonymous request.
func (l *LoginContext) Info() *homepage.UserInfo {
	return l.info
}

// Login requests that the session be bound to the given account when
// the request completes. A later call overwrites the id; last write
// wins within the request.
func (l *LoginContext) Login(id int64) {
	l.state = stateToLogin
	l.loginID = id
}

// Logout requests that the identity be dropped from the session. It
// reports whether the context held a logged-in identity before the
// call, so a handler can tell "was logged in, now logging out" from
// "was already logged out".
func (l *LoginContext) Logout() bool {
	l.state = stateToLogout
	return l.info != nil
}

// SetValue stores a short-lived session value (flash message). Written
// through to the session at commit time.
func (l *LoginContext) SetValue(key, value string) {
	if l.rec != nil {
		l.rec.Set(key, value)
		return
	}
	if l.buffered == nil {
		l.buffered = map[string]string{}
	}
	l.buffered[key] = value
}

// PopValue consumes a session value.
func (l *LoginContext) PopValue(key string) (string, bool) {
	if l.rec != nil {
		return l.rec.Pop(key)
	}
	if value, ok := l.buffered[key]; ok {
		delete(l.buffered, key)
		return value, true
	}
	return "", false
}

func (l *LoginContext) flushBuffered(rec *session.Record) {
	for k, v := range l.buffered {
		rec.Set(k, v)
	}
	l.buffered = nil
	l.rec = rec
}

// FromContext returns the LoginContext the gate stored for this
// request. The second return is false when the gate did not run.
func FromContext(c *fiber.Ctx) (*LoginContext, bool) {
	login, ok := c.Locals(localsKey).(*LoginContext)
	return login, ok
}
