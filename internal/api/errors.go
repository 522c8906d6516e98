package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"task-service/internal/service"
)

const (
	msgInternal     = "Internal server error"
	msgUnauthorized = "Please authenticate"
)

// respondError maps service errors onto the HTTP error contract.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Message})
	case errors.Is(err, service.ErrDuplicateEmail):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already in use"})
	case errors.Is(err, service.ErrInvalidImage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please upload an image"})
	case errors.Is(err, service.ErrAvatarTooLarge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File too large"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unable to login"})
	case errors.Is(err, service.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
	case errors.Is(err, service.ErrNotFound):
		return sendEmpty(c, fiber.StatusNotFound)
	}

	slog.ErrorContext(c.UserContext(), "Request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgInternal})
}

// ErrorHandler is the application-wide fiber error handler. Framework errors
// keep their status; anything else is reported as a 500 without detail.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == fiber.StatusNotFound {
			return sendEmpty(c, fiber.StatusNotFound)
		}
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	return respondError(c, err)
}

// sendEmpty writes status with an empty body. SendStatus would fill in the
// status text.
func sendEmpty(c *fiber.Ctx, status int) error {
	c.Status(status)
	return nil
}
