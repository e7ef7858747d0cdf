package server

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"connecto/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed zero-based page/size query parameters.
type Pagination struct {
	Page int
	Size int
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxPage         = 1_000_000
)

// parsePagination extracts page and size query parameters. A missing or
// invalid size falls back to defaultSize, size is capped at maxPageSize and
// page at maxPage.
func parsePagination(c *fiber.Ctx, defaultSize int) Pagination {
	if defaultSize <= 0 {
		defaultSize = defaultPageSize
	}

	size := c.QueryInt("size", defaultSize)
	if size <= 0 {
		size = defaultSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}
	if page > maxPage {
		page = maxPage
	}

	return Pagination{Page: page, Size: size}
}

func (s *Server) pagination(c *fiber.Ctx) Pagination {
	size := defaultPageSize
	if s.config != nil && s.config.DefaultPageSize > 0 {
		size = s.config.DefaultPageSize
	}
	return parsePagination(c, size)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "postId" -> "Invalid post ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidArgumentError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseQueryID is parseID for a query-string parameter.
func (s *Server) parseQueryID(c *fiber.Ctx, key string) (uint, error) {
	id, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidArgumentError("Invalid "+strings.ReplaceAll(key, "_", " ")))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "postId" -> "post ID", "followerId" -> "follower ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// messageResponse is the body of mutations that only report a message.
type messageResponse struct {
	Message string `json:"message"`
}
