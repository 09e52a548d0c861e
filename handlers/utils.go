package handlers

import (
	"errors"
	"log/slog"
	"memo-app/services"
	"memo-app/validator"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, data fiber.Map) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

func validationError(c *fiber.Ctx, err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": errs,
		})
	}
	return badRequest(c, err.Error())
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestID").(string); ok {
		return id
	}
	return ""
}

// statusForKind maps a service error kind to an HTTP status.
func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindInvalid, services.KindMalformedImport:
		return fiber.StatusBadRequest
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindTimeout, services.KindStoreUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// serviceError renders a failed memo operation. Client errors carry the
// underlying reason; server errors carry message only.
func serviceError(c *fiber.Ctx, logger *slog.Logger, message string, err error) error {
	kind := services.KindOf(err)
	status := statusForKind(kind)

	body := fiber.Map{
		"error":     message,
		"kind":      kind,
		"retryable": services.IsRetryable(err),
	}

	var se *services.Error
	if status < fiber.StatusInternalServerError && errors.As(err, &se) {
		body["error"] = se.Err.Error()
	}

	if status >= fiber.StatusInternalServerError {
		logger.Error("server error",
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"message", message,
			"error", err,
		)
	}

	return c.Status(status).JSON(body)
}

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
