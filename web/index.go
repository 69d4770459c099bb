package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-homepage/middleware/logingate"
)

// IndexShow renders the landing page: visitor count, the logged-in
// username if any, and the one-shot "successful" banner left by the
// login and registration handlers.
func (h *Controller) IndexShow(c *fiber.Ctx) error {
	login, ok := logingate.FromContext(c)
	if !ok {
		return fiber.ErrInternalServerError
	}

	visitors := int64(0)
	if h.Counter != nil {
		visitors = h.Counter.Hit()
	}

	data := fiber.Map{
		"visitors": visitors,
	}

	if info := login.Info(); info != nil {
		data["username"] = info.Name
	}
	if msg, ok := login.PopValue(flashSuccessful); ok {
		data["successful"] = msg
	}

	return c.Render(h.Views.Index, data)
}
