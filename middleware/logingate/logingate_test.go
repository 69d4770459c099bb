package logingate_test

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	homepage "github.com/goliatone/go-homepage"
	"github.com/goliatone/go-homepage/middleware/logingate"
	"github.com/goliatone/go-homepage/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type gateFixture struct {
	app      *fiber.App
	store    *homepage.AccountStore
	sessions *session.Manager
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	require.NoError(t, homepage.CreateSchema(context.Background(), db))

	hasher, err := homepage.NewHasher([]byte("test-pepper"), homepage.HasherParams{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	require.NoError(t, err)

	store := homepage.NewAccountStore(db, hasher)

	codec, err := session.NewCodec([]byte("0123456789abcdef"), "test")
	require.NoError(t, err)
	sessions := session.NewManager(session.NewMemoryStore(), codec)

	app := fiber.New()
	app.Use(logingate.New(logingate.Config{
		Store:    store,
		Sessions: sessions,
	}))

	return &gateFixture{app: app, store: store, sessions: sessions}
}

func (f *gateFixture) register(t *testing.T, name string) int64 {
	t.Helper()
	ctx := context.Background()

	ticket, err := f.store.GenerateRegistrationTicket(ctx, name)
	require.NoError(t, err)
	id, err := f.store.RegisterUser(ctx, ticket, "password123")
	require.NoError(t, err)
	return id
}

func sessionCookie(t *testing.T, f *gateFixture, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == f.sessions.CookieName() {
			return cookie
		}
	}
	return nil
}

func TestGateAnonymousRequest(t *testing.T) {
	f := newGateFixture(t)

	f.app.Get("/whoami", func(c *fiber.Ctx) error {
		login, ok := logingate.FromContext(c)
		assert.True(t, ok)
		assert.Nil(t, login.Info())
		return c.SendString("anonymous")
	})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	// nothing to persist, so no cookie is issued
	assert.Nil(t, sessionCookie(t, f, resp))
}

func TestGateLoginThenResolve(t *testing.T) {
	f := newGateFixture(t)
	id := f.register(t, "alice")

	f.app.Post("/login", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		login.Login(id)
		return c.SendString("ok")
	})
	f.app.Get("/whoami", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		info := login.Info()
		if info == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(info.Name)
	})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	cookie := sessionCookie(t, f, resp)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	resp, err = f.app.Test(req)
	require.NoError(t, err)

	body := make([]byte, 64)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "alice", string(body[:n]))
}

func TestGateResolvesPermissions(t *testing.T) {
	f := newGateFixture(t)
	id := f.register(t, "alice")
	require.NoError(t, f.store.GrantPermissions(context.Background(), homepage.Permissions{
		UserID: id,
		Short:  true,
	}))

	f.app.Post("/login", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		login.Login(id)
		return c.SendString("ok")
	})
	f.app.Get("/caps", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		info := login.Info()
		if info == nil {
			return fiber.ErrUnauthorized
		}
		assert.True(t, info.Perms.IsShort())
		assert.False(t, info.Perms.IsAdmin())
		return c.SendString("ok")
	})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	cookie := sessionCookie(t, f, resp)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/caps", nil)
	req.AddCookie(cookie)
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGateLogout(t *testing.T) {
	f := newGateFixture(t)
	id := f.register(t, "alice")

	f.app.Post("/login", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		login.Login(id)
		return c.SendString("ok")
	})
	f.app.Get("/logout", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		assert.True(t, login.Logout())
		return c.SendString("ok")
	})
	f.app.Get("/whoami", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		if login.Info() == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(login.Info().Name)
	})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	cookie := sessionCookie(t, f, resp)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	_, err = f.app.Test(req)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	resp, err = f.app.Test(req)
	require.NoError(t, err)

	body := make([]byte, 64)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "anonymous", string(body[:n]))
}

func TestGateStaleSessionCleanup(t *testing.T) {
	f := newGateFixture(t)
	id := f.register(t, "alice")

	f.app.Post("/login", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		login.Login(id)
		return c.SendString("ok")
	})
	f.app.Get("/whoami", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		if login.Info() == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(login.Info().Name)
	})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	cookie := sessionCookie(t, f, resp)
	require.NotNil(t, cookie)

	// the account disappears while the session still references it
	_, err = f.store.DB().NewDelete().
		Model((*homepage.User)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := make([]byte, 64)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "anonymous", string(body[:n]))
}

func TestGateFlashValues(t *testing.T) {
	f := newGateFixture(t)

	f.app.Post("/leave", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		login.SetValue("successful", "it worked")
		return c.SendString("ok")
	})
	f.app.Get("/read", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		if value, ok := login.PopValue("successful"); ok {
			return c.SendString(value)
		}
		return c.SendString("empty")
	})

	// a value left by an anonymous request creates a session
	resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, "/leave", nil))
	require.NoError(t, err)
	cookie := sessionCookie(t, f, resp)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(cookie)
	resp, err = f.app.Test(req)
	require.NoError(t, err)

	body := make([]byte, 64)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "it worked", string(body[:n]))

	// consumed: the second read comes back empty
	req = httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(cookie)
	resp, err = f.app.Test(req)
	require.NoError(t, err)

	n, _ = resp.Body.Read(body)
	assert.Equal(t, "empty", string(body[:n]))
}

func TestGateSkipsCommitOnHandlerError(t *testing.T) {
	f := newGateFixture(t)
	id := f.register(t, "alice")

	f.app.Post("/fail", func(c *fiber.Ctx) error {
		login, _ := logingate.FromContext(c)
		login.Login(id)
		return errors.New("handler blew up")
	})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	// the requested login was never committed
	assert.Nil(t, sessionCookie(t, f, resp))
}
