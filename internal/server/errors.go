package server

import (
	"errors"
	"log/slog"

	"connecto/internal/middleware"
	"connecto/internal/models"

	"github.com/gofiber/fiber/v2"
)

var statusByCode = map[string]int{
	models.CodeInvalidArgument: fiber.StatusBadRequest,
	models.CodeValidation:      fiber.StatusBadRequest,
	models.CodeUnauthorized:    fiber.StatusUnauthorized,
	models.CodeForbidden:       fiber.StatusForbidden,
	models.CodeNotFound:        fiber.StatusNotFound,
	models.CodeConflict:        fiber.StatusConflict,
	models.CodeInternal:        fiber.StatusInternalServerError,
}

// statusForError maps an error to its HTTP status. Anything that is not an
// AppError is a 500.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	if status, ok := statusByCode[appErr.Code]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// respondError writes err using the status its code maps to. Server-side
// failures are logged with the request context.
func respondError(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}
