package routes

import (
	card_handlers "aigc.wiki/handlers/cards"
	upload_handlers "aigc.wiki/handlers/upload"

	"github.com/gofiber/fiber/v2"
)

// registerAPIRoutes card reads are public; every write goes through RequireAuth.
func registerAPIRoutes(f *fiber.App, a *app) {
	cardHandler := card_handlers.NewCardHandler(a.cards)
	uploadHandler := upload_handlers.NewUploadHandler(a.uploads)

	cards := f.Group("/api/cards")
	cards.Get("/", cardHandler.ListCards)
	cards.Get("/:id", cardHandler.GetCard)
	cards.Post("/", a.gate.RequireAuth, cardHandler.CreateCard)
	cards.Put("/:id", a.gate.RequireAuth, cardHandler.UpdateCard)
	cards.Delete("/:id", a.gate.RequireAuth, cardHandler.DeleteCard)

	f.Post("/api/upload", a.gate.RequireAuth, uploadHandler.Upload)
}
