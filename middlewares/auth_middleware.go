package middlewares

import (
	"aigc.wiki/pkg/apperrors"
	"aigc.wiki/pkg/session"
	"aigc.wiki/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// IdentityKey is the c.Locals key holding the *token.Claims of the caller.
const IdentityKey = "admin"

var errUnauthorized = apperrors.Auth("unauthorized")

// AuthGate resolves the calling admin from the session cookie.
type AuthGate struct {
	tokens *token.Service
}

func NewAuthGate(tokens *token.Service) *AuthGate {
	return &AuthGate{tokens: tokens}
}

// CurrentIdentity returns the claims of a valid session token, if any.
func (g *AuthGate) CurrentIdentity(c *fiber.Ctx) (*token.Claims, bool) {
	raw, ok := session.Get(c)
	if !ok {
		return nil, false
	}
	return g.tokens.Validate(raw)
}

// Identify stores the identity in locals when present and never blocks.
func (g *AuthGate) Identify(c *fiber.Ctx) error {
	if claims, ok := g.CurrentIdentity(c); ok {
		c.Locals(IdentityKey, claims)
	}
	return c.Next()
}

// RequireAuth rejects the request with 401 unless a valid identity is present.
func (g *AuthGate) RequireAuth(c *fiber.Ctx) error {
	claims, ok := g.CurrentIdentity(c)
	if !ok {
		return errUnauthorized
	}
	c.Locals(IdentityKey, claims)
	return c.Next()
}

// RequireAuthPage is RequireAuth for HTML pages: it redirects to the login form.
func (g *AuthGate) RequireAuthPage(c *fiber.Ctx) error {
	claims, ok := g.CurrentIdentity(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusFound)
	}
	c.Locals(IdentityKey, claims)
	return c.Next()
}

// Identity reads what Identify or RequireAuth stored.
func Identity(c *fiber.Ctx) (*token.Claims, bool) {
	claims, ok := c.Locals(IdentityKey).(*token.Claims)
	return claims, ok && claims != nil
}
