package routes

import (
	gallery_handlers "aigc.wiki/handlers/gallery"

	"github.com/gofiber/fiber/v2"
)

// registerPublicRoutes the gallery pages and the uploaded images.
func registerPublicRoutes(f *fiber.App, a *app) {
	galleryHandler := gallery_handlers.NewGalleryHandler(a.cards)

	f.Static(a.deps.Config.UploadURLPrefix, a.deps.Config.UploadDir, fiber.Static{
		MaxAge: 86400,
	})
	f.Get("/", a.gate.Identify, galleryHandler.Home)
	f.Get("/cards/:id", a.gate.Identify, galleryHandler.Detail)
}
