package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"receiving-portal/repositories"
	"receiving-portal/services"
)

// respondError maps workflow errors onto the portal's HTTP surface.
// Backend 401/403 is fatal for the session and always comes back as 401 so
// the client redirects to login instead of showing an inline message.
func respondError(ctx *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var lineErr *services.LineQtyError
	var upstreamErr *repositories.UpstreamError

	switch {
	case errors.Is(err, repositories.ErrUnauthenticated):
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Session expired, please log in again",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Order not found",
		})
	case errors.Is(err, services.ErrNoOpenOrder),
		errors.Is(err, services.ErrNoWarehouse),
		errors.Is(err, services.ErrNoQuantities):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	case errors.As(err, &lineErr):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": lineErr.Error(),
			"lineNum": lineErr.LineNum,
		})
	case errors.As(err, &validationErr):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": validationErr.Message,
			"field":   validationErr.Field,
		})
	case errors.Is(err, services.ErrStaleView):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	case errors.As(err, &upstreamErr):
		// Business rejection: the backend's message goes out verbatim.
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": upstreamErr.Message,
		})
	default:
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"message": "Backend request failed, please try again",
		})
	}
}

func currentSession(ctx *fiber.Ctx) (*services.SessionState, error) {
	session, ok := ctx.Locals("session").(*services.SessionState)
	if !ok || session == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "no active session")
	}
	return session, nil
}
