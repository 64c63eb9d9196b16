package routes

import (
	"github.com/gofiber/fiber/v2"

	"receiving-portal/config"
	"receiving-portal/controllers"
	"receiving-portal/middleware"
	"receiving-portal/services"
)

func SetupReceiptRoutes(app *fiber.App, sessions *services.SessionService, receipts *services.ReceiptService) {

	receiptController := controllers.NewReceiptController(receipts)

	api := app.Group(config.MAIN_ROUTES+"/receipts", middleware.NewAuthMiddleware(sessions))
	api.Post("/", receiptController.Submit)
}
