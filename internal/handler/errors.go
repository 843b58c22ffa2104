package handler

import (
	"errors"

	"smart-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// actor builds the service Actor from the values RequireAuth stored in the context.
func actor(c *fiber.Ctx) service.Actor {
	a := service.Actor{ID: "system", Name: "Unknown"}
	if v, ok := c.Locals("user_id").(string); ok {
		a.ID = v
	}
	if v, ok := c.Locals("user_name").(string); ok {
		a.Name = v
	}
	if v, ok := c.Locals("user_email").(string); ok {
		a.Email = v
	}
	return a
}

func parseID(c *fiber.Ctx, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+what+" ID")
	}
	return id, nil
}

// ErrorHandler renders errors that reach fiber as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, err)
}

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindConflict:
		return fiber.StatusConflict
	case service.KindPolicyViolation:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError renders err. Operational failures are logged and replaced by a
// generic message; partial failures keep their own message and kind so the
// client can tell them apart.
func respondError(c *fiber.Ctx, err error) error {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) || svcErr.Kind == service.KindOperational {
		zap.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong. Please try again later.",
			"kind":  service.KindOperational.String(),
		})
	}

	body := fiber.Map{
		"error": svcErr.Message,
		"kind":  svcErr.Kind.String(),
	}
	if len(svcErr.Fields) > 0 {
		body["fields"] = svcErr.Fields
	}
	if svcErr.Kind == service.KindPartialFailure {
		zap.L().Error("partial failure",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(statusFor(svcErr.Kind)).JSON(body)
}
