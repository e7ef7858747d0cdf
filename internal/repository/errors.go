package repository

import (
	"errors"
	"strings"

	"connecto/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate is the cause wrapped inside the CONFLICT AppError returned for
// an insert rejected by a unique index.
var ErrDuplicate = errors.New("duplicate key")

const pgUniqueViolation = "23505"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, pgUniqueViolation)
}

// translateWriteError maps a failed insert to CONFLICT or INTERNAL_ERROR.
func translateWriteError(err error, conflictMessage string) error {
	if isUniqueConstraintError(err) {
		return &models.AppError{Code: models.CodeConflict, Message: conflictMessage, Err: ErrDuplicate}
	}
	return models.NewInternalError(err)
}
