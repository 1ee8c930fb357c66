// Package session keeps the admin token in an HTTP cookie.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the name of the admin session cookie.
const CookieName = "admin_token"

// Set writes the token cookie to the response. Fiber appends the Set-Cookie
// header immediately, so it survives errors returned by later handlers.
func Set(c *fiber.Ctx, token string, maxAge time.Duration, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Expires:  time.Now().Add(maxAge),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Get reads the token from the request cookies.
func Get(c *fiber.Ctx) (string, bool) {
	v := c.Cookies(CookieName)
	return v, v != ""
}

// Clear expires the cookie on the client.
func Clear(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
