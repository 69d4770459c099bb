// Package web holds the route handlers. Handlers validate their form
// payload, call into the store or the board, and render a template;
// identity comes from the login gate, never from the session store
// directly.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-homepage"
	"github.com/goliatone/go-homepage/board"
	"github.com/goliatone/go-homepage/nickname"
)

// Flash value keys consumed one request after they are set.
const (
	flashSuccessful = "successful"
	flashNewShort   = "new_short"
	flashShortError = "short_error"
	flashBoardError = "board_error"
)

type ControllerRoutes struct {
	Index     string
	Login     string
	Logout    string
	Register  string
	Short     string
	Board     string
	OpenGraph string
	Nickname  string
}

type ControllerViews struct {
	Index     string
	Login     string
	Register  string
	Short     string
	Board     string
	OpenGraph string
}

// Controller carries the collaborators every handler needs.
type Controller struct {
	Store   *homepage.AccountStore
	Board   *board.Board
	Counter *homepage.VisitorCounter
	Matcher *nickname.Matcher
	Logger  homepage.Logger
	Routes  *ControllerRoutes
	Views   *ControllerViews
}

// NewController builds a Controller with the default route and view
// names.
func NewController(store *homepage.AccountStore) *Controller {
	return &Controller{
		Store:  store,
		Logger: homepage.DefaultLogger(),
		Routes: &ControllerRoutes{
			Index:     "/",
			Login:     "/login",
			Logout:    "/logout",
			Register:  "/register",
			Short:     "/short",
			Board:     "/board",
			OpenGraph: "/og",
			Nickname:  "/api/v1/discord_name",
		},
		Views: &ControllerViews{
			Index:     "index",
			Login:     "login",
			Register:  "register",
			Short:     "short",
			Board:     "board",
			OpenGraph: "og",
		},
	}
}

// WithLogger overrides the controller logger.
func (h *Controller) WithLogger(logger homepage.Logger) *Controller {
	if logger != nil {
		h.Logger = logger
	}
	return h
}

// RegisterRoutes attaches every handler to the app. The login gate must
// already be installed upstream.
func RegisterRoutes(app *fiber.App, h *Controller) {
	app.Get(h.Routes.Index, h.IndexShow)

	app.Get(h.Routes.Login, h.LoginShow)
	app.Post(h.Routes.Login, h.LoginPost)
	app.Get(h.Routes.Logout, h.Logout)

	app.Get(h.Routes.Register, h.RegisterShow)
	app.Post(h.Routes.Register, h.RegisterPost)

	app.Get(h.Routes.Short, h.ShortShow)
	app.Post(h.Routes.Short, h.ShortCreate)
	app.Post(h.Routes.Short+"/delete", h.ShortDelete)
	app.Get(h.Routes.Short+"/:code", h.ShortResolve)

	app.Get(h.Routes.Board, h.BoardShow)
	app.Post(h.Routes.Board, h.BoardPost)

	app.Get(h.Routes.OpenGraph, h.OpenGraphShow)
	app.Get(h.Routes.Nickname, h.NicknameMatch)
}
