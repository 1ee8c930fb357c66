package routes

import (
	auth_handlers "aigc.wiki/handlers/auth"

	"github.com/gofiber/fiber/v2"
)

func registerAuthRoutes(f *fiber.App, a *app) {
	authHandler := auth_handlers.NewAuthHandler(a.auth, a.gate, a.deps.Config.IsProduction())

	api := f.Group("/api/auth")
	api.Post("/login", authHandler.Login)
	api.Get("/me", authHandler.Me)
	api.Post("/logout", authHandler.Logout)

	f.Get("/login", authHandler.ShowLogin)
}
