package web

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-homepage/board"
	"github.com/goliatone/go-homepage/middleware/logingate"
)

// BoardShow renders the guestbook.
func (h *Controller) BoardShow(c *fiber.Ctx) error {
	login, ok := logingate.FromContext(c)
	if !ok {
		return fiber.ErrInternalServerError
	}

	data := fiber.Map{
		"messages": h.Board.Messages(),
	}
	if msg, ok := login.PopValue(flashBoardError); ok {
		data["error"] = msg
	}

	return c.Render(h.Views.Board, data)
}

// BoardPayload is the guestbook form payload. Byte limits match the
// board's own validation; the rules here just fail fast before taking
// the board lock.
type BoardPayload struct {
	Name    string `form:"name" json:"name"`
	Content string `form:"content" json:"content"`
}

// Validate will validate the payload
func (r BoardPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, board.MaxFieldLength)),
		validation.Field(&r.Content, validation.Required, validation.Length(1, board.MaxFieldLength)),
	)
}

// BoardPost submits a message and bounces back to the board, leaving a
// one-shot error note when the message was turned away.
func (h *Controller) BoardPost(c *fiber.Ctx) error {
	login, ok := logingate.FromContext(c)
	if !ok {
		return fiber.ErrInternalServerError
	}

	payload := new(BoardPayload)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}

	if err := payload.Validate(); err != nil {
		login.SetValue(flashBoardError, "invalid message")
		return c.Redirect(h.Routes.Board, fiber.StatusSeeOther)
	}

	switch h.Board.Post(payload.Name, payload.Content, c.IP()) {
	case board.RejectedInvalid:
		login.SetValue(flashBoardError, "invalid message")
	case board.RejectedGreedy:
		login.SetValue(flashBoardError, "you already have a message up")
	}

	return c.Redirect(h.Routes.Board, fiber.StatusSeeOther)
}
