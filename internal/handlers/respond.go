package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"zakaz/internal/domain"
)

// httpStatus maps domain sentinels to HTTP statuses.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrInvalidPassword):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrInsufficientRole), errors.Is(err, domain.ErrNotOwner):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes the structured error envelope. Unexpected errors are logged
// and surfaced as a generic server error, never as raw internal detail.
func fail(c *fiber.Ctx, err error) error {
	status := httpStatus(err)
	code := domain.Code(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unexpected error")
		message = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   fiber.Map{"code": code, "message": message},
	})
}

// invalidInput reports a malformed or invalid request body.
func invalidInput(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   fiber.Map{"code": "INVALID_INPUT", "message": message},
	})
}
