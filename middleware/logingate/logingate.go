// Package logingate is the authentication middleware. It resolves the
// session cookie to a validated identity exactly once per request,
// exposes it to handlers through a LoginContext, and applies at most
// one identity transition to the session store after the handler runs.
// Handlers never touch the session store directly.
package logingate

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-homepage"
	"github.com/goliatone/go-homepage/session"
)

const localsKey = "logingate:login"

// Config wires the gate to its collaborators.
type Config struct {
	Store        *homepage.AccountStore
	Sessions     *session.Manager
	Logger       homepage.Logger
	CookieSecure bool
}

// New returns the gate middleware. Resolution happens before the
// handler, the commit after; within one request resolution
// happens-before the handler, which happens-before the commit.
func New(cfg Config) fiber.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = homepage.DefaultLogger()
	}

	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		rec, err := cfg.Sessions.Load(ctx, c.Cookies(cfg.Sessions.CookieName()))
		if err != nil {
			logger.Error("session load failed: %v", err)
			return fiber.ErrInternalServerError
		}

		login := &LoginContext{rec: rec}

		if rec != nil && rec.UserID != nil {
			id := *rec.UserID
			name, err := cfg.Store.GetUsername(ctx, id)
			switch {
			case errors.Is(err, homepage.ErrUserNotFound):
				// the account is gone; drop the stale identity
				// reference so the session cannot be reused
				rec.UserID = nil
				if err := cfg.Sessions.Save(ctx, rec); err != nil {
					logger.Error("stale session cleanup failed: %v", err)
					return fiber.ErrInternalServerError
				}
			case err != nil:
				logger.Error("username lookup failed: %v", err)
				return fiber.ErrInternalServerError
			default:
				perms, err := cfg.Store.GetPermissions(ctx, id)
				if err != nil {
					logger.Error("permissions lookup failed: %v", err)
					return fiber.ErrInternalServerError
				}
				if err := cfg.Sessions.Renew(ctx, rec); err != nil {
					logger.Error("session renew failed: %v", err)
					return fiber.ErrInternalServerError
				}
				setCookie(c, cfg, rec)
				login.info = &homepage.UserInfo{ID: id, Name: name, Perms: perms}
			}
		}

		c.Locals(localsKey, login)

		if err := c.Next(); err != nil {
			return err
		}

		return commit(c, cfg, logger, login)
	}
}

// commit applies the handler's requested identity transition. It is the
// single session write of the request; Unchanged requests only persist
// value mutations, never identity or expiry.
func commit(c *fiber.Ctx, cfg Config, logger homepage.Logger, login *LoginContext) error {
	ctx := c.Context()

	switch login.state {
	case stateToLogin:
		fresh, err := cfg.Sessions.Login(ctx, login.rec, login.loginID)
		if err != nil {
			logger.Error("session login commit failed: %v", err)
			return fiber.ErrInternalServerError
		}
		login.flushBuffered(fresh)
		if fresh.Dirty() {
			if err := cfg.Sessions.Save(ctx, fresh); err != nil {
				logger.Error("session value save failed: %v", err)
				return fiber.ErrInternalServerError
			}
		}
		setCookie(c, cfg, fresh)

	case stateToLogout:
		if err := cfg.Sessions.Logout(ctx, login.rec); err != nil {
			logger.Error("session logout commit failed: %v", err)
			return fiber.ErrInternalServerError
		}

	case stateUnchanged:
		rec := login.rec
		if rec == nil {
			if len(login.buffered) == 0 {
				return nil
			}
			fresh, err := cfg.Sessions.Anonymous(ctx)
			if err != nil {
				logger.Error("session create failed: %v", err)
				return fiber.ErrInternalServerError
			}
			login.flushBuffered(fresh)
			rec = fresh
			setCookie(c, cfg, rec)
		}
		if rec.Dirty() {
			if err := cfg.Sessions.Save(ctx, rec); err != nil {
				logger.Error("session value save failed: %v", err)
				return fiber.ErrInternalServerError
			}
		}
	}

	return nil
}

func setCookie(c *fiber.Ctx, cfg Config, rec *session.Record) {
	value, err := cfg.Sessions.Cookie(rec)
	if err != nil {
		// signing cannot realistically fail with a valid key; keep the
		// old cookie rather than kill the response
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Sessions.CookieName(),
		Value:    value,
		Path:     "/",
		Expires:  rec.ExpiresAt,
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
