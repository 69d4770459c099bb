package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultCookieName is the cookie the session id travels in.
const DefaultCookieName = "site_session"

// DefaultTTL is the idle expiry of a session; every valid authenticated
// request pushes it out again.
const DefaultTTL = 7 * 24 * time.Hour

// Manager bundles the store, the cookie codec and TTL policy. It is the
// single component that creates, renews and destroys sessions; the
// login middleware drives it once per request.
type Manager struct {
	store      Store
	codec      *Codec
	ttl        time.Duration
	cookieName string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTTL overrides the session expiry window.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// NewManager builds a Manager around a store and codec.
func NewManager(store Store, codec *Codec, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:      store,
		codec:      codec,
		ttl:        DefaultTTL,
		cookieName: DefaultCookieName,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// CookieName returns the configured cookie name.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Load resolves a cookie value to its live session record. Any decode
// failure or missing/expired record comes back as (nil, nil): an
// anonymous request, not an error.
func (m *Manager) Load(ctx context.Context, cookie string) (*Record, error) {
	id, err := m.codec.Decode(cookie)
	if err != nil {
		return nil, nil
	}

	rec, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// Renew pushes the session expiry out by one TTL window.
func (m *Manager) Renew(ctx context.Context, rec *Record) error {
	rec.ExpiresAt = time.Now().Add(m.ttl)
	return m.store.Renew(ctx, rec.ID, rec.ExpiresAt)
}

// Save persists value mutations on an existing record.
func (m *Manager) Save(ctx context.Context, rec *Record) error {
	return m.store.Put(ctx, rec)
}

// Login binds an identity to the session. The session id is rotated:
// the old record is removed and a fresh id issued, so a pre-login
// cookie can never be fixated onto an authenticated session.
func (m *Manager) Login(ctx context.Context, rec *Record, userID int64) (*Record, error) {
	fresh := &Record{
		ID:        uuid.NewString(),
		UserID:    &userID,
		ExpiresAt: time.Now().Add(m.ttl),
	}

	if rec != nil {
		fresh.Values = rec.Values
		if err := m.store.Remove(ctx, rec.ID); err != nil {
			return nil, err
		}
	}

	if err := m.store.Put(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Logout removes the identity reference but keeps the session alive for
// its remaining TTL (flash values survive the logout redirect).
func (m *Manager) Logout(ctx context.Context, rec *Record) error {
	if rec == nil {
		return nil
	}
	rec.UserID = nil
	return m.store.Put(ctx, rec)
}

// Anonymous creates an unauthenticated session, used when a handler
// stores values for a visitor with no session yet.
func (m *Manager) Anonymous(ctx context.Context) (*Record, error) {
	rec := &Record{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.store.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Cookie encodes the record's id into a signed cookie value.
func (m *Manager) Cookie(rec *Record) (string, error) {
	return m.codec.Encode(rec.ID, rec.ExpiresAt)
}
