package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	gconfig "github.com/goliatone/go-config/config"
	homepage "github.com/goliatone/go-homepage"
	"github.com/goliatone/go-homepage/board"
	"github.com/goliatone/go-homepage/config"
	"github.com/goliatone/go-homepage/middleware/logingate"
	"github.com/goliatone/go-homepage/nickname"
	"github.com/goliatone/go-homepage/session"
	"github.com/goliatone/go-homepage/web"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config   *gconfig.Container[*config.BaseConfig]
	bunDB    *bun.DB
	store    *homepage.AccountStore
	sessions *session.Manager
	board    *board.Board
	counter  *homepage.VisitorCounter
	matcher  *nickname.Matcher
	srv      *fiber.App
	logger   homepage.Logger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func main() {
	logger := homepage.DefaultLogger()

	cfg := gconfig.New(&config.BaseConfig{})

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: logger,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithSessions(ctx, app); err != nil {
		panic(err)
	}

	if err := WithState(ctx, app); err != nil {
		panic(err)
	}

	WithHTTPServer(app)

	go func() {
		if err := app.srv.Listen(app.Config().GetServer().GetAddress()); err != nil {
			logger.Error("server stopped: %v", err)
		}
	}()

	WaitExitSignal()

	if err := app.srv.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown: %v", err)
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := saveState(saveCtx, app); err != nil {
		logger.Error("state save: %v", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := homepage.CreateSchema(ctx, db); err != nil {
		return err
	}

	pepper, err := readSecretFile(app.Config().GetSecrets().GetPepperFile())
	if err != nil {
		return err
	}

	hasher, err := homepage.NewHasher(pepper, homepage.DefaultHasherParams())
	if err != nil {
		return err
	}

	app.bunDB = db
	app.store = homepage.NewAccountStore(db, hasher).WithLogger(app.logger)

	return nil
}

func WithSessions(ctx context.Context, app *App) error {
	key, err := readSecretFile(app.Config().GetSecrets().GetCookieKeyFile())
	if err != nil {
		return err
	}

	codec, err := session.NewCodec(key, "go-homepage")
	if err != nil {
		return err
	}

	scfg := app.Config().GetSession()

	var store session.Store
	switch scfg.GetBackend() {
	case "memory":
		store = session.NewMemoryStore()
	default:
		bstore := session.NewBunStore(app.bunDB)
		if err := bstore.CreateSchema(ctx); err != nil {
			return err
		}
		store = bstore
	}

	var opts []session.ManagerOption
	if ttl := scfg.GetTTL(); ttl > 0 {
		opts = append(opts, session.WithTTL(ttl))
	}
	if name := scfg.GetCookieName(); name != "" {
		opts = append(opts, session.WithCookieName(name))
	}

	app.sessions = session.NewManager(store, codec, opts...)
	return nil
}

func WithState(ctx context.Context, app *App) error {
	messages, err := app.store.LoadBoard(ctx)
	if err != nil {
		return err
	}
	app.board = board.New(messages)

	visitors, err := app.store.Visitors(ctx)
	if err != nil {
		return err
	}
	app.counter = homepage.NewVisitorCounter(visitors)

	if path := app.Config().GetSite().GetDictionaryFile(); path != "" {
		matcher, err := nickname.LoadFile(path)
		if err != nil {
			return err
		}
		app.logger.Info("dictionary loaded: %d words", matcher.Len())
		app.matcher = matcher
	} else {
		app.matcher = nickname.New(nil)
	}

	return nil
}

func WithHTTPServer(app *App) {
	engine := django.New(app.Config().GetSite().GetViewsDir(), ".html")

	srv := fiber.New(fiber.Config{
		Views:             engine,
		PassLocalsToViews: true,
	})

	srv.Use(logingate.New(logingate.Config{
		Store:        app.store,
		Sessions:     app.sessions,
		Logger:       app.logger,
		CookieSecure: app.Config().GetServer().GetCookieSecure(),
	}))

	controller := web.NewController(app.store).WithLogger(app.logger)
	controller.Board = app.board
	controller.Counter = app.counter
	controller.Matcher = app.matcher

	web.RegisterRoutes(srv, controller)

	app.srv = srv
}

func saveState(ctx context.Context, app *App) error {
	if err := app.store.SaveBoard(ctx, app.board.Messages()); err != nil {
		return err
	}
	return app.store.SetVisitors(ctx, app.counter.Value())
}

// readSecretFile loads raw secret bytes, dropping a trailing newline
// left by editors.
func readSecretFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(raw, "\r\n"), nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
