package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"receiving-portal/config"
	"receiving-portal/controllers/idgen"
	"receiving-portal/database"
	"receiving-portal/repositories"
	"receiving-portal/routes"
	"receiving-portal/services"
)

func main() {

	config.LoadConfig()
	idgen.Init()

	app := fiber.New()

	// Optional receipts journal
	journalDB, err := database.OpenJournalDB()
	if err != nil {
		log.Fatalf("Failed to connect to journal database: %v", err)
	}

	repo := repositories.NewOrderRepository()
	sessions := services.NewSessionService(repo, config.PageSize)
	receipts := services.NewReceiptService(repo, journalDB, services.NewMailerFromConfig())

	// Setup CORS middleware
	config.SetupCORS(app)

	// Health probes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	// Setup routes
	routes.SetupAuthRoutes(app, repo, sessions, journalDB)
	routes.SetupOrderRoutes(app, sessions)
	routes.SetupReceiptRoutes(app, sessions, receipts)

	port := config.APP_PORT
	fmt.Println("🚀 Receiving portal running on port " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
