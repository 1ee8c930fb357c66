package handlers

import (
	"encoding/json"

	"aigc.wiki/configs/configslog"
	"aigc.wiki/pkg/apperrors"
	"aigc.wiki/pkg/etag"
	"aigc.wiki/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CardHandler is the JSON API over cards.
type CardHandler struct {
	service services.ICardService
}

func NewCardHandler(service services.ICardService) *CardHandler {
	return &CardHandler{service: service}
}

// ListCards returns every card, newest first. The response carries an ETag so
// the gallery can revalidate cheaply.
func (h *CardHandler) ListCards(c *fiber.Ctx) error {
	cards, err := h.service.ListCards(c.UserContext())
	if err != nil {
		return err
	}
	body, err := json.Marshal(cards)
	if err != nil {
		return apperrors.Internal("failed to encode cards", err)
	}

	tag := etag.Of(body)
	c.Set(fiber.HeaderETag, tag)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	if etag.Match(c.Get(fiber.HeaderIfNoneMatch), tag) {
		return c.SendStatus(fiber.StatusNotModified)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func (h *CardHandler) GetCard(c *fiber.Ctx) error {
	card, err := h.service.GetCard(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(card)
}

func (h *CardHandler) CreateCard(c *fiber.Ctx) error {
	in, err := parseCardInput(c)
	if err != nil {
		return err
	}
	card, err := h.service.CreateCard(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(card)
}

func (h *CardHandler) UpdateCard(c *fiber.Ctx) error {
	in, err := parseCardInput(c)
	if err != nil {
		return err
	}
	card, err := h.service.UpdateCard(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(card)
}

func (h *CardHandler) DeleteCard(c *fiber.Ctx) error {
	if err := h.service.DeleteCard(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func parseCardInput(c *fiber.Ctx) (services.CardInput, error) {
	var in services.CardInput
	if err := c.BodyParser(&in); err != nil {
		configslog.Log.Debug("Rejected card payload", zap.String("path", c.Path()), zap.Error(err))
		return in, apperrors.Wrap(services.ErrInvalidCardBody, err)
	}
	return in, nil
}
