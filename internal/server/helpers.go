package server

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"stanhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// criticalPathTimeout bounds login, admin checks and post submission. A path
// that blows the deadline fails the request; there is no retry.
const criticalPathTimeout = 5 * time.Second

// boundCtx derives a deadline-bound context for a critical path.
func boundCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, criticalPathTimeout)
}

// timeoutOr converts a deadline expiry into the timeout error for op and
// passes every other error through unchanged.
func timeoutOr(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewTimeoutError(op)
	}
	return err
}

// errResponseWritten signals that a helper already wrote the HTTP response.
// Handlers seeing it must return nil so Fiber's ErrorHandler does not
// overwrite what was sent.
var errResponseWritten = errors.New("response already written")

// Pagination is the parsed limit/offset pair from the query string.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination reads limit and offset, clamping both to sane ranges.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	return Pagination{
		Limit:  min(limit, maxPaginationLimit),
		Offset: max(c.QueryInt("offset", 0), 0),
	}
}

// parseID reads a positive uint route parameter. On bad input it responds
// 400 itself and returns errResponseWritten; the caller then returns nil.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam turns a route param name into label text for error messages,
// e.g. "reportId" becomes "report ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	prefix, found := strings.CutSuffix(param, "Id")
	if !found {
		return param
	}

	var b strings.Builder
	for i, r := range prefix {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String() + " ID"
}

// respondServiceError maps a service-layer error onto the right HTTP status.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		case models.CodeValidation:
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		case models.CodeUnauthorized:
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		case models.CodeTimeout:
			return models.RespondWithError(c, fiber.StatusGatewayTimeout, err)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("role").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}
