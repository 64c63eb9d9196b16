package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"receiving-portal/config"
	"receiving-portal/controllers"
	"receiving-portal/middleware"
	"receiving-portal/repositories"
	"receiving-portal/services"
)

func SetupAuthRoutes(app *fiber.App, repo repositories.OrderRepository, sessions *services.SessionService, db *gorm.DB) {

	authController := controllers.NewAuthController(repo, sessions, db)

	api := app.Group(config.MAIN_ROUTES + "/auth")
	api.Post("/login", authController.Login)

	apiAuth := app.Group(config.MAIN_ROUTES+"/auth", middleware.NewAuthMiddleware(sessions))
	apiAuth.Get("/logout", authController.Logout)
	apiAuth.Get("/me", authController.Me)
}
