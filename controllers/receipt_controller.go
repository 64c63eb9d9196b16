package controllers

import (
	"github.com/gofiber/fiber/v2"

	"receiving-portal/services"
)

type ReceiptController struct {
	Receipts *services.ReceiptService
}

func NewReceiptController(receipts *services.ReceiptService) *ReceiptController {
	return &ReceiptController{Receipts: receipts}
}

// Submit posts one goods receipt for the open order. One submission per
// session at a time: while one is running the trigger is refused, the same
// way the button stays disabled in the UI.
func (c *ReceiptController) Submit(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	var input struct {
		SupplierRef string `json:"supplierRef"`
	}
	if err := ctx.BodyParser(&input); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
		})
	}

	if !session.BeginSubmit() {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "A submission is already in progress",
		})
	}
	defer session.EndSubmit()

	result, err := c.Receipts.Submit(session, input.SupplierRef)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"grpoDocEntry": result.GrpoDocEntry,
		"opHash":       result.OpHash,
		"refreshed":    result.Refreshed,
		"lines":        result.Lines,
	})
}
