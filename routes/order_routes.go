package routes

import (
	"github.com/gofiber/fiber/v2"

	"receiving-portal/config"
	"receiving-portal/controllers"
	"receiving-portal/middleware"
	"receiving-portal/services"
)

func SetupOrderRoutes(app *fiber.App, sessions *services.SessionService) {

	orderController := controllers.NewOrderController(sessions)

	api := app.Group(config.MAIN_ROUTES+"/orders", middleware.NewAuthMiddleware(sessions))

	api.Get("/", orderController.List)
	api.Post("/search", orderController.Search)
	api.Post("/reload", orderController.Reload)
	api.Post("/page/next", orderController.NextPage)
	api.Post("/page/prev", orderController.PrevPage)
	api.Post("/warehouse", orderController.SelectWarehouse)
	api.Get("/export", orderController.Export)
	api.Post("/close", orderController.Close)
	api.Post("/:doc_entry/open", orderController.Open)
	api.Put("/lines/:line_num/quantity", orderController.SetQuantity)
}
