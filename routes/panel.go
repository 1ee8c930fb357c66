package routes

import (
	gallery_handlers "aigc.wiki/handlers/gallery"

	"github.com/gofiber/fiber/v2"
)

// registerPanelRoutes the HTML admin pages under /admin.
func registerPanelRoutes(f *fiber.App, a *app) {
	galleryHandler := gallery_handlers.NewGalleryHandler(a.cards)

	panel := f.Group("/admin", a.gate.RequireAuthPage)
	panel.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/admin/cards", fiber.StatusFound) })
	panel.Get("/cards", galleryHandler.AdminCards)
}
