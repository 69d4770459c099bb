package web

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-homepage"
	"github.com/goliatone/go-homepage/middleware/logingate"
)

// shortUser resolves the caller's identity and checks the short-link
// capability. Callers without it get a not-found, same as a page that
// does not exist.
func (h *Controller) shortUser(c *fiber.Ctx) (*logingate.LoginContext, *homepage.UserInfo, error) {
	login, ok := logingate.FromContext(c)
	if !ok {
		return nil, nil, fiber.ErrInternalServerError
	}

	info := login.Info()
	if info == nil || !info.Perms.IsShort() {
		return nil, nil, fiber.ErrNotFound
	}
	return login, info, nil
}

// ShortShow renders the caller's short links.
func (h *Controller) ShortShow(c *fiber.Ctx) error {
	login, info, err := h.shortUser(c)
	if err != nil {
		return err
	}

	links, err := h.Store.ListShortLinks(c.Context(), info.ID)
	if err != nil {
		h.Logger.Error("short list: %v", err)
		return fiber.ErrInternalServerError
	}

	data := fiber.Map{
		"username": info.Name,
		"links":    links,
	}
	if code, ok := login.PopValue(flashNewShort); ok {
		data["new_short"] = code
	}
	if msg, ok := login.PopValue(flashShortError); ok {
		data["error"] = msg
	}

	return c.Render(h.Views.Short, data)
}

// CreateShortPayload is the link creation form payload. The short code
// is optional; a random one is drawn when it is left empty.
type CreateShortPayload struct {
	URL   string `form:"url" json:"url"`
	Short string `form:"short" json:"short"`
}

// Validate will validate the payload
func (r CreateShortPayload) Validate() error {
	fields := []*validation.FieldRules{
		validation.Field(&r.URL, validation.Required, validation.By(homepage.ValidateTargetURL)),
	}
	if r.Short != "" {
		fields = append(fields, validation.Field(&r.Short, homepage.ShortCodeRules()...))
	}
	return validation.ValidateStruct(&r, fields...)
}

// ShortCreate allocates a short code for the caller and leaves it as a
// one-shot value for the management page to display.
func (h *Controller) ShortCreate(c *fiber.Ctx) error {
	login, info, err := h.shortUser(c)
	if err != nil {
		return err
	}

	payload := new(CreateShortPayload)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("short create parse payload: %v", err)
		return fiber.ErrBadRequest
	}

	if err := payload.Validate(); err != nil {
		return fiber.ErrBadRequest
	}

	code, err := h.Store.CreateShortLink(c.Context(), info.ID, payload.URL, payload.Short)
	if err != nil {
		switch {
		case errors.Is(err, homepage.ErrShortTaken):
			login.SetValue(flashShortError, "short code taken")
			return c.Redirect(h.Routes.Short, fiber.StatusSeeOther)
		case errors.Is(err, homepage.ErrUserNotFound):
			return fiber.ErrNotFound
		default:
			h.Logger.Error("short create: %v", err)
			return fiber.ErrInternalServerError
		}
	}

	login.SetValue(flashNewShort, code)

	return c.Redirect(h.Routes.Short, fiber.StatusSeeOther)
}

// DeleteShortPayload names the code to remove.
type DeleteShortPayload struct {
	Short string `form:"short" json:"short"`
}

// Validate will validate the payload
func (r DeleteShortPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Short, homepage.ShortCodeRules()...),
	)
}

// ShortDelete removes a link the caller owns. Whether the code was
// missing or owned by someone else is not distinguishable from the
// response.
func (h *Controller) ShortDelete(c *fiber.Ctx) error {
	_, info, err := h.shortUser(c)
	if err != nil {
		return err
	}

	payload := new(DeleteShortPayload)
	if err := c.BodyParser(payload); err != nil {
		return fiber.ErrBadRequest
	}
	if err := payload.Validate(); err != nil {
		return fiber.ErrBadRequest
	}

	if _, err := h.Store.DeleteIfOwnsShortLink(c.Context(), info.ID, payload.Short); err != nil {
		h.Logger.Error("short delete: %v", err)
		return fiber.ErrInternalServerError
	}

	return c.Redirect(h.Routes.Short, fiber.StatusSeeOther)
}

// ShortResolve redirects a short code to its target and logs the hit.
// Unknown and malformed codes look the same from the outside.
func (h *Controller) ShortResolve(c *fiber.Ctx) error {
	code := c.Params("code")
	if err := validation.Validate(code, homepage.ShortCodeRules()...); err != nil {
		return fiber.ErrNotFound
	}

	target, err := h.Store.GetShortLink(c.Context(), code, c.IP())
	if err != nil {
		if errors.Is(err, homepage.ErrLinkNotFound) {
			return fiber.ErrNotFound
		}
		h.Logger.Error("short resolve: %v", err)
		return fiber.ErrInternalServerError
	}

	return c.Redirect(target, fiber.StatusTemporaryRedirect)
}
