package handlers

import (
	"errors"

	"aigc.wiki/configs/configslog"
	"aigc.wiki/middlewares"
	"aigc.wiki/models"
	"aigc.wiki/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GalleryHandler renders the public gallery and the admin card list.
type GalleryHandler struct {
	service services.ICardService
}

func NewGalleryHandler(service services.ICardService) *GalleryHandler {
	return &GalleryHandler{service: service}
}

// Home renders the gallery. A failed load shows the empty state instead of an
// error page.
func (h *GalleryHandler) Home(c *fiber.Ctx) error {
	cards, err := h.service.ListCards(c.UserContext())
	if err != nil {
		configslog.Log.Error("Gallery - Home: cards could not be loaded", zap.Error(err))
		cards = []models.Card{}
	}
	return c.Render("gallery/index", fiber.Map{
		"Title": "AIGC Wiki",
		"Cards": cards,
		"Count": len(cards),
		"Admin": c.Locals(middlewares.IdentityKey),
	}, "layouts/main")
}

// Detail renders one card with every generation parameter.
func (h *GalleryHandler) Detail(c *fiber.Ctx) error {
	card, err := h.service.GetCard(c.UserContext(), c.Params("id"))
	if errors.Is(err, services.ErrCardNotFound) {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{
			"Title": "Not found",
			"Admin": c.Locals(middlewares.IdentityKey),
		}, "layouts/main")
	}
	if err != nil {
		return err
	}
	return c.Render("gallery/detail", fiber.Map{
		"Title": card.Title,
		"Card":  card,
		"Admin": c.Locals(middlewares.IdentityKey),
	}, "layouts/main")
}

// AdminCards renders the admin list page. Editing is driven by the JSON API.
func (h *GalleryHandler) AdminCards(c *fiber.Ctx) error {
	cards, err := h.service.ListCards(c.UserContext())
	data := fiber.Map{
		"Title": "Manage cards",
		"Cards": cards,
		"Admin": c.Locals(middlewares.IdentityKey),
	}
	if err != nil {
		configslog.Log.Error("Gallery - AdminCards: cards could not be loaded", zap.Error(err))
		data["Cards"] = []models.Card{}
		data["Error"] = "Cards could not be loaded."
	}
	return c.Render("admin/cards", data, "layouts/main")
}
