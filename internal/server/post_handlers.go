package server

import (
	"strings"

	"stanhub/internal/models"
	"stanhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/forum/posts?sort=latest|trending&tag=...
func (s *Server) GetFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	sortBy := c.Query("sort", service.SortLatest)
	tag := strings.TrimSpace(c.Query("tag"))
	userID, _ := s.optionalUserID(c)

	feed, err := s.feedService.GetFeed(ctx, sortBy, tag, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(feed)
}

// GetPostThread handles GET /api/forum/posts/:id
func (s *Server) GetPostThread(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	admin := false
	if userID != 0 {
		admin, _ = s.isAdminByUserID(ctx, userID)
	}

	thread, err := s.feedService.GetThread(ctx, id, userID, admin)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(thread)
}

// CreatePost handles POST /api/forum/posts. The composer sends multipart
// form data so text fields and image attachments arrive together.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx, cancel := boundCtx(c.Context())
	defer cancel()
	userID := c.Locals("userID").(uint)

	in := service.CreatePostInput{
		UserID:   userID,
		Title:    c.FormValue("title"),
		Content:  c.FormValue("content"),
		Category: c.FormValue("category"),
		Tags:     splitTags(c.FormValue("tags")),
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		in.Images = form.File["images"]
	}

	post, err := s.postService.CreatePost(ctx, in)
	if err != nil {
		return respondServiceError(c, timeoutOr(err, "post submission"))
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// LikePost handles POST /api/forum/posts/:id/like as a toggle: the first
// call likes, the next call unlikes. The response carries the recomputed
// counter so the client never shows a guessed value.
func (s *Server) LikePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.ToggleLike(ctx, userID, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// CreateReply handles POST /api/forum/posts/:id/replies
func (s *Server) CreateReply(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reply, err := s.postService.CreateReply(ctx, service.CreateReplyInput{
		UserID:  userID,
		PostID:  id,
		Content: req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(reply)
}

// ReportPost handles POST /api/forum/posts/:id/report
func (s *Server) ReportPost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.postService.ReportPost(ctx, service.ReportPostInput{
		UserID: userID,
		PostID: id,
		Reason: req.Reason,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetMyPosts handles GET /api/users/me/posts; it includes pending and
// rejected posts so users can see their own moderation state.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// splitTags parses the comma-separated tags form field.
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
