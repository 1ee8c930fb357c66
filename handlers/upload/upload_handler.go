package handlers

import (
	"io"

	"aigc.wiki/services"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler accepts image uploads from the admin panel.
type UploadHandler struct {
	service services.IUploadService
}

func NewUploadHandler(service services.IUploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Upload stores the multipart field "file".
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return services.ErrNoFile
	}

	res, err := h.service.Store(c.UserContext(), services.FileUpload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"url":      res.URL,
		"fileName": res.FileName,
	})
}
