package handlers

import (
	"aigc.wiki/middlewares"
	"aigc.wiki/pkg/apperrors"
	"aigc.wiki/pkg/session"
	"aigc.wiki/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves the login API and the login page.
type AuthHandler struct {
	service      services.IAuthService
	gate         *middlewares.AuthGate
	secureCookie bool
}

func NewAuthHandler(service services.IAuthService, gate *middlewares.AuthGate, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, gate: gate, secureCookie: secureCookie}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type adminView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Login checks the credentials and sets the session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Wrap(services.ErrMissingCredentials, err)
	}

	admin, tok, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	session.Set(c, tok, h.service.TokenTTL(), h.secureCookie)
	return c.JSON(fiber.Map{
		"success": true,
		"admin":   adminView{ID: admin.ID, Username: admin.Username},
	})
}

// Me reports whether the caller holds a valid session.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, ok := h.gate.CurrentIdentity(c)
	if !ok {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	return c.JSON(fiber.Map{
		"authenticated": true,
		"admin":         adminView{ID: claims.ID, Username: claims.Username},
	})
}

// Logout drops the session cookie. The token itself stays valid until it
// expires.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session.Clear(c, h.secureCookie)
	return c.JSON(fiber.Map{"success": true})
}

// ShowLogin renders the login form, or sends a signed-in admin to the panel.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	if _, ok := h.gate.CurrentIdentity(c); ok {
		return c.Redirect("/admin/cards", fiber.StatusFound)
	}
	return c.Render("auth/login", fiber.Map{"Title": "Admin login"}, "layouts/main")
}
