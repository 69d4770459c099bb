package web

import (
	"errors"
	"net"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-homepage"
	"github.com/goliatone/go-homepage/middleware/logingate"
)

// LoginShow renders the login form.
func (h *Controller) LoginShow(c *fiber.Ctx) error {
	return c.Render(h.Views.Login, fiber.Map{
		"error": nil,
	})
}

// LoginPayload is the login form payload.
type LoginPayload struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, homepage.UsernameRules()...),
		validation.Field(&r.Password, homepage.PasswordRules()...),
	)
}

// LoginPost verifies the credentials and, on success, asks the gate to
// bind the session to the account. Validation failures and unknown
// credentials render the same generic message.
func (h *Controller) LoginPost(c *fiber.Ctx) error {
	login, ok := logingate.FromContext(c)
	if !ok {
		return fiber.ErrInternalServerError
	}

	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("login parse payload: %v", err)
		return c.Status(fiber.StatusBadRequest).Render(h.Views.Login, fiber.Map{
			"error": "login failed",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(h.Views.Login, fiber.Map{
			"error": "login failed",
		})
	}

	id, err := h.Store.VerifyUser(c.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, homepage.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).Render(h.Views.Login, fiber.Map{
				"error": "login failed",
			})
		}
		h.Logger.Error("login verify: %v", err)
		return fiber.ErrInternalServerError
	}

	login.Login(id)
	login.SetValue(flashSuccessful, "login successful")

	return c.Redirect(h.Routes.Index, fiber.StatusSeeOther)
}

// Logout drops the identity and sends the visitor home.
func (h *Controller) Logout(c *fiber.Ctx) error {
	login, ok := logingate.FromContext(c)
	if !ok {
		return fiber.ErrInternalServerError
	}

	if login.Logout() {
		login.SetValue(flashSuccessful, "logged out")
	}

	return c.Redirect(h.Routes.Index, fiber.StatusSeeOther)
}

// RegisterShow renders the registration form.
func (h *Controller) RegisterShow(c *fiber.Ctx) error {
	return c.Render(h.Views.Register, fiber.Map{
		"error": nil,
	})
}

// TicketPayload is the loopback-only ticket issuance request; the name
// arrives as a query argument.
type TicketPayload struct {
	Name string `query:"name" json:"name"`
}

// Validate will validate the payload
func (r TicketPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, homepage.UsernameRules()...),
	)
}

// RegisterPayload is the registration form payload. The ticket carries
// the account name; the visitor only picks a password.
type RegisterPayload struct {
	Ticket   string `form:"ticket" json:"ticket"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Ticket, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.Password, homepage.PasswordRules()...),
	)
}

// RegisterPost handles two shapes of request. A loopback caller with a
// `name` query argument and no form body gets a fresh registration
// ticket as plain text. Everyone else submits a ticket and password to
// claim the account the ticket was issued for.
func (h *Controller) RegisterPost(c *fiber.Ctx) error {
	if name := c.Query("name"); name != "" && isLoopback(c.IP()) {
		return h.issueTicket(c, name)
	}

	login, ok := logingate.FromContext(c)
	if !ok {
		return fiber.ErrInternalServerError
	}

	payload := new(RegisterPayload)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("register parse payload: %v", err)
		return c.Status(fiber.StatusBadRequest).Render(h.Views.Register, fiber.Map{
			"error": "registration failed",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(h.Views.Register, fiber.Map{
			"error": "registration failed",
		})
	}

	id, err := h.Store.RegisterUser(c.Context(), payload.Ticket, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, homepage.ErrTicketNotFound), errors.Is(err, homepage.ErrNameTaken):
			return c.Status(fiber.StatusBadRequest).Render(h.Views.Register, fiber.Map{
				"error": "registration failed",
			})
		default:
			h.Logger.Error("register user: %v", err)
			return fiber.ErrInternalServerError
		}
	}

	login.Login(id)
	login.SetValue(flashSuccessful, "registration successful")

	return c.Redirect(h.Routes.Index, fiber.StatusSeeOther)
}

func (h *Controller) issueTicket(c *fiber.Ctx, name string) error {
	payload := TicketPayload{Name: name}
	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid name")
	}

	ticket, err := h.Store.GenerateRegistrationTicket(c.Context(), payload.Name)
	if err != nil {
		if errors.Is(err, homepage.ErrNameTaken) {
			return c.Status(fiber.StatusConflict).SendString("name taken")
		}
		h.Logger.Error("ticket issue: %v", err)
		return fiber.ErrInternalServerError
	}

	return c.SendString(ticket)
}

func isLoopback(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && ip.IsLoopback()
}
