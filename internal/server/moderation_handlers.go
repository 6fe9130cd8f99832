package server

import (
	"stanhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetModerationQueue handles GET /api/admin/forum/queue
func (s *Server) GetModerationQueue(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)

	items, err := s.moderationService.GetQueue(ctx, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(items)
}

// GetModerationOverview handles GET /api/admin/queue: pending posts, pending
// media, unapproved charms and pending reports in one payload. A section
// whose fetch fails comes back empty rather than failing the request.
func (s *Server) GetModerationOverview(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	return c.JSON(s.moderationService.GetOverview(c.Context(), page.Limit, page.Offset))
}

// GetModerationSummary handles GET /api/admin/forum/summary
func (s *Server) GetModerationSummary(c *fiber.Ctx) error {
	summary, err := s.moderationService.GetSummary(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}

// ApprovePost handles POST /api/admin/forum/posts/:id/approve
func (s *Server) ApprovePost(c *fiber.Ctx) error {
	return s.reviewPost(c, "approve")
}

// RejectPost handles POST /api/admin/forum/posts/:id/reject
func (s *Server) RejectPost(c *fiber.Ctx) error {
	return s.reviewPost(c, "reject")
}

func (s *Server) reviewPost(c *fiber.Ctx, verdict string) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.ReviewPost(c.Context(), id, verdict); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post " + verdict + "d"})
}

// DeletePost handles DELETE /api/admin/forum/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.DeletePost(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// PinPost handles POST /api/admin/forum/posts/:id/pin
func (s *Server) PinPost(c *fiber.Ctx) error {
	return s.setPinned(c, true)
}

// UnpinPost handles POST /api/admin/forum/posts/:id/unpin
func (s *Server) UnpinPost(c *fiber.Ctx) error {
	return s.setPinned(c, false)
}

func (s *Server) setPinned(c *fiber.Ctx, pinned bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.SetPinned(c.Context(), id, pinned); err != nil {
		return respondServiceError(c, err)
	}

	msg := "Post unpinned"
	if pinned {
		msg = "Post pinned"
	}
	return c.JSON(fiber.Map{"message": msg})
}

// GetReports handles GET /api/admin/reports?status=pending|resolved|dismissed
func (s *Server) GetReports(c *fiber.Ctx) error {
	ctx := c.Context()
	status := c.Query("status", models.ReportPending)
	switch status {
	case models.ReportPending, models.ReportResolved, models.ReportDismissed:
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid report status"))
	}
	page := parsePagination(c, 20)

	items, err := s.moderationService.GetReports(ctx, status, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(items)
}

// ResolveReport handles POST /api/admin/reports/:id/resolve
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.ResolveReport(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Report resolved"})
}

// DismissReport handles POST /api/admin/reports/:id/dismiss
func (s *Server) DismissReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.DismissReport(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Report dismissed"})
}

// DeleteReportedPost handles DELETE /api/admin/reports/:id/post. It removes
// the post the report points at and closes every open report against it.
func (s *Server) DeleteReportedPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.DeleteReported(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Reported post deleted"})
}
