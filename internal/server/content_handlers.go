package server

import (
	"strconv"

	"stanhub/internal/models"
	"stanhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAlbums handles GET /api/albums?category=...
func (s *Server) GetAlbums(c *fiber.Ctx) error {
	albums, err := s.contentService.ListAlbums(c.Context(), c.Query("category"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(albums)
}

// GetAlbumMedia handles GET /api/albums/:id/media; only approved items are
// visible on the public gallery.
func (s *Server) GetAlbumMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	items, err := s.contentService.ListGallery(c.Context(), id, models.StatusApproved, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(items)
}

// GetTimeline handles GET /api/timeline
func (s *Server) GetTimeline(c *fiber.Ctx) error {
	events, err := s.contentService.ListTimeline(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(events)
}

// GetCharms handles GET /api/charms; only approved charms are public.
func (s *Server) GetCharms(c *fiber.Ctx) error {
	charms, err := s.contentService.ListCharms(c.Context(), true)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(charms)
}

// SubmitCharm handles POST /api/charms; submissions are anonymous and stay
// hidden until an admin approves them.
func (s *Server) SubmitCharm(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	charm, err := s.contentService.SubmitCharm(c.Context(), req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(charm)
}

// GetHomeContent handles GET /api/home/:key
func (s *Server) GetHomeContent(c *fiber.Ctx) error {
	content, err := s.contentService.GetHomeContent(c.Context(), c.Params("key"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(content)
}

// CreateAlbum handles POST /api/admin/content/albums
func (s *Server) CreateAlbum(c *fiber.Ctx) error {
	var req service.AlbumInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	album, err := s.contentService.CreateAlbum(c.Context(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(album)
}

// UpdateAlbum handles PUT /api/admin/content/albums/:id
func (s *Server) UpdateAlbum(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.AlbumInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	album, err := s.contentService.UpdateAlbum(c.Context(), id, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(album)
}

// DeleteAlbum handles DELETE /api/admin/content/albums/:id
func (s *Server) DeleteAlbum(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.contentService.DeleteAlbum(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Album deleted"})
}

// ReorderAlbums handles POST /api/admin/content/albums/reorder
func (s *Server) ReorderAlbums(c *fiber.Ctx) error {
	var req struct {
		OrderedIDs []uint `json:"ordered_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.contentService.ReorderAlbums(c.Context(), req.OrderedIDs); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Albums reordered"})
}

// UploadMedia handles POST /api/admin/content/media (multipart). Admin
// uploads are approved on arrival.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	file, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	in := service.UploadMediaInput{
		UserID: userID,
		Title:  c.FormValue("title"),
		Type:   c.FormValue("type"),
		File:   file,
	}
	if albumID := queryUint(c.FormValue("album_id")); albumID != 0 {
		in.AlbumID = &albumID
	}

	item, err := s.contentService.UploadMedia(c.Context(), in, true)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// GetAllMedia handles GET /api/admin/content/media?status=...
func (s *Server) GetAllMedia(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	albumID := queryUint(c.Query("album_id"))

	items, err := s.contentService.ListGallery(c.Context(), albumID, c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(items)
}

// ApproveMedia handles POST /api/admin/content/media/:id/approve
func (s *Server) ApproveMedia(c *fiber.Ctx) error {
	return s.reviewMedia(c, "approve")
}

// RejectMedia handles POST /api/admin/content/media/:id/reject
func (s *Server) RejectMedia(c *fiber.Ctx) error {
	return s.reviewMedia(c, "reject")
}

func (s *Server) reviewMedia(c *fiber.Ctx, verdict string) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.ReviewMedia(c.Context(), id, verdict); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Media " + verdict + "d"})
}

// DeleteMedia handles DELETE /api/admin/content/media/:id
func (s *Server) DeleteMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.contentService.DeleteMedia(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Media deleted"})
}

// CreateTimelineEvent handles POST /api/admin/content/timeline
func (s *Server) CreateTimelineEvent(c *fiber.Ctx) error {
	var req service.TimelineEventInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	event, err := s.contentService.CreateTimelineEvent(c.Context(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// UpdateTimelineEvent handles PUT /api/admin/content/timeline/:id
func (s *Server) UpdateTimelineEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.TimelineEventInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	event, err := s.contentService.UpdateTimelineEvent(c.Context(), id, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// DeleteTimelineEvent handles DELETE /api/admin/content/timeline/:id
func (s *Server) DeleteTimelineEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.contentService.DeleteTimelineEvent(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Timeline event deleted"})
}

// GetAllCharms handles GET /api/admin/content/charms (approved and pending)
func (s *Server) GetAllCharms(c *fiber.Ctx) error {
	charms, err := s.contentService.ListCharms(c.Context(), false)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(charms)
}

// ApproveCharm handles POST /api/admin/content/charms/:id/approve
func (s *Server) ApproveCharm(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.ApproveCharm(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Charm approved"})
}

// DeleteCharm handles DELETE /api/admin/content/charms/:id
func (s *Server) DeleteCharm(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.DeleteCharm(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Charm deleted"})
}

// SetHomeContent handles PUT /api/admin/content/home/:key
func (s *Server) SetHomeContent(c *fiber.Ctx) error {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	content, err := s.contentService.SetHomeContent(c.Context(), c.Params("key"), req.Value)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(content)
}

// queryUint parses an optional numeric query/form value; zero means absent.
func queryUint(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
