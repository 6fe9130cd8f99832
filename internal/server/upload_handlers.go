package server

import (
	"stanhub/internal/models"
	"stanhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadFile handles POST /api/uploads. The bucket form field routes the
// file: "avatars" for profile images, anything else lands in "posts".
func (s *Server) UploadFile(c *fiber.Ctx) error {
	ctx := c.Context()

	file, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	var url string
	switch c.FormValue("bucket") {
	case service.BucketAvatars:
		url, err = s.uploadService.SaveAvatar(ctx, file)
	default:
		url, err = s.uploadService.SavePostImage(ctx, file)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}
